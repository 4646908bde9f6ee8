package files

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Locator resolves a Telegram file id to a download URL.
// *tgbotapi.BotAPI satisfies it.
type Locator interface {
	GetFileDirectURL(fileID string) (string, error)
}

type FileService struct {
	locator Locator
	client  *http.Client
	docDir  string
}

func NewFileService(locator Locator, docDir string) (*FileService, error) {
	if err := os.MkdirAll(docDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "FileService: cannot create dir %s", docDir)
	}

	return &FileService{
		locator: locator,
		client:  http.DefaultClient,
		docDir:  docDir,
	}, nil
}

// SaveFile downloads an uploaded file into the document directory under a
// random name and returns its path.
func (fs *FileService) SaveFile(fileID string) (string, error) {
	link, err := fs.locator.GetFileDirectURL(fileID)
	if err != nil {
		return "", errors.Wrap(err, "FileService.SaveFile: cannot get file")
	}

	fileExt := path.Ext(strings.SplitN(link, "?", 2)[0])
	if fileExt == "" {
		fileExt = ".jpg"
	}

	fileName := uuid.New().String() + fileExt
	filePath := filepath.Join(fs.docDir, fileName)

	resp, err := fs.client.Get(link)
	if err != nil {
		return "", errors.Wrap(err, "FileService.SaveFile: cannot download file")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("FileService.SaveFile: download returned %s", resp.Status)
	}

	out, err := os.Create(filePath)
	if err != nil {
		return "", errors.Wrap(err, "FileService.SaveFile: cannot create file")
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(filePath)
		return "", errors.Wrap(err, "FileService.SaveFile: cannot save file")
	}

	return filePath, nil
}

func (fs *FileService) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "FileService.ReadFile")
	}
	return data, nil
}

func (fs *FileService) DeleteFile(path string) error {
	if path == "" {
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "FileService.DeleteFile")
	}

	return nil
}

// DeleteFiles removes every path and returns the first error, if any.
func (fs *FileService) DeleteFiles(paths []string) error {
	var first error
	for _, p := range paths {
		if err := fs.DeleteFile(p); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// IsImage reports whether path looks like an image OCR can read.
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp":
		return true
	}
	return false
}
