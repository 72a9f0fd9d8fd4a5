// services/files.go
package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"studiotrack-backend/utils"

	"github.com/golang-jwt/jwt/v5"
)

var ErrBadFilePath = errors.New("invalid file path")

// FileService stores uploaded attachments on local disk under
// uploads/<customerID>/ and issues short-lived signed tokens for serving
// them. Stored paths are kept relative to the upload root.
type FileService struct {
	baseDir string
}

func NewFileService() *FileService {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		panic("Failed to create upload directory: " + err.Error())
	}
	return &FileService{baseDir: dir}
}

// SaveUpload writes one multipart file under the customer's folder with a
// timestamped, sanitized name. Returns the stored path relative to the
// upload root, e.g. "<customerID>/1700000000-quote.pdf".
func (s *FileService) SaveUpload(customerID string, fh *multipart.FileHeader) (string, error) {
	dir := filepath.Join(s.baseDir, customerID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), utils.SanitizeFilename(fh.Filename))

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return customerID + "/" + name, nil
}

// Resolve maps a stored relative path to an absolute path on disk,
// rejecting anything that escapes the upload root.
func (s *FileService) Resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", ErrBadFilePath
	}
	return filepath.Join(s.baseDir, cleaned), nil
}

// Delete removes a stored file from disk. A missing file is not an error;
// the attachment row is the source of truth.
func (s *FileService) Delete(relPath string) error {
	full, err := s.Resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func tokenTTL() time.Duration {
	minutes := 15 // default
	if env := os.Getenv("FILE_TOKEN_MINUTES"); env != "" {
		if m, err := strconv.Atoi(env); err == nil {
			minutes = m
		}
	}
	return time.Duration(minutes) * time.Minute
}

// SignedFileToken issues a short-lived token granting access to exactly one
// stored file of one customer.
func (s *FileService) SignedFileToken(customerID, filename string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET not set")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       customerID,
		"filename": filename,
		"exp":      time.Now().Add(tokenTTL()).Unix(),
		"iat":      time.Now().Unix(),
	})
	return token.SignedString([]byte(secret))
}

// VerifyFileToken validates a signed file token and returns the customer id
// and filename it grants access to.
func (s *FileService) VerifyFileToken(tokenString string) (customerID, filename string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid token claims")
	}
	customerID, _ = claims["id"].(string)
	filename, _ = claims["filename"].(string)
	if customerID == "" || filename == "" {
		return "", "", errors.New("invalid token claims")
	}
	return customerID, filename, nil
}
