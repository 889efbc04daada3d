package files

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	md5simd "github.com/minio/md5-simd"
)

var (
	// ErrInvalidBucket is returned when the requested bucket does not exist
	ErrInvalidBucket = errors.New("bucket name is invalid")
	// ErrFileNotFound is returned when no object has the requested key
	ErrFileNotFound = errors.New("file does not exist")
)

// KeyConflictError is returned when an upload would overwrite an existing
// object
type KeyConflictError struct {
	Key string
}

func (e *KeyConflictError) Error() string {
	return fmt.Sprintf("object %q already exists", e.Key)
}

// ResolveKey decides the storage key for an upload.
//
// A non-blank callerKey is used verbatim. Otherwise the key is
// "<content hash>/<filename>", and contentHash is only invoked in that case.
// If the chosen key is already in existing, a *KeyConflictError naming it
// is returned.
func ResolveKey(existing map[string]struct{}, callerKey string, contentHash func() (string, error), filename string) (string, error) {
	key := callerKey
	if strings.TrimSpace(callerKey) == "" {
		hash, err := contentHash()
		if err != nil {
			return "", fmt.Errorf("failed to hash content: %w", err)
		}
		key = hash + "/" + filename
	}

	if _, ok := existing[key]; ok {
		return "", &KeyConflictError{Key: key}
	}
	return key, nil
}

// md5Hex returns the lowercase hex MD5 digest of everything read from r
func md5Hex(server md5simd.Server, r io.Reader) (string, error) {
	h := server.NewHash()
	defer h.Close()

	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
