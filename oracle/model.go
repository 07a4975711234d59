package oracle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultModelURL is the published archive of the trained evaluation model.
const DefaultModelURL = "https://github.com/harloc-AI/rustai_abalone/raw/main/src/magister_zero.zip"

// modelDirName is the directory the archive unpacks into.
const modelDirName = "magister_zero_unwrap_save"

// modelArtifacts are the files a usable saved model consists of.
var modelArtifacts = []string{
	"saved_model.pb",
	"keras_metadata.pb",
	"fingerprint.pb",
	filepath.Join("variables", "variables.index"),
	filepath.Join("variables", "variables.data-00000-of-00001"),
}

// ModelPresent checks dir for a complete saved model. The artifacts may sit
// in dir itself or in its unpack directory; the directory actually holding
// them is returned.
func ModelPresent(dir string) (string, bool) {
	if _, err := os.Stat(dir); err != nil {
		return "", false
	}
	unpacked := filepath.Join(dir, modelDirName)
	if _, err := os.Stat(unpacked); err == nil {
		return ModelPresent(unpacked)
	}
	for _, artifact := range modelArtifacts {
		if _, err := os.Stat(filepath.Join(dir, artifact)); err != nil {
			return "", false
		}
	}
	return dir, true
}

// DownloadModel fetches the model archive from url and unpacks it into dir,
// returning the directory holding the artifacts.
func DownloadModel(url, dir string) (string, error) {
	log.Info().Str("url", url).Str("dir", dir).Msg("downloading evaluation model")

	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download model: unexpected status %s", resp.Status)
	}
	archive, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("download model: %w", err)
	}

	if err := unpack(archive, dir); err != nil {
		return "", fmt.Errorf("unpack model: %w", err)
	}
	modelDir, ok := ModelPresent(dir)
	if !ok {
		return "", fmt.Errorf("unpack model: archive misses artifacts")
	}
	return modelDir, nil
}

func unpack(archive []byte, dir string) error {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, file := range reader.File {
		target, err := securePath(dir, file.Name)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(file, target); err != nil {
			return err
		}
	}
	return nil
}

// securePath guards against archive entries escaping the target directory.
func securePath(dir, name string) (string, error) {
	target := filepath.Join(dir, name)
	if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal archive path %q", name)
	}
	return target, nil
}

func extractFile(file *zip.File, target string) error {
	in, err := file.Open()
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}
