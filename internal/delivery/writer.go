package delivery

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sv2linux/sv2-bridge/pkg/callback"
)

// Layout inside the Wine prefix. SV2 is an unmodifiable binary; these paths
// are its contract, not ours to redesign.
const (
	tokenPayloadRel = "drive_c/users/Public/sv2_auth_token.json"
	licenseRelFmt   = "drive_c/users/%s/AppData/Roaming/Dreamtonics/Synthesizer V Studio 2/license"
	codeFileName    = "cb"
	verifierName    = "cv"
	fallbackUser    = "steamuser"
)

// Error is a filesystem failure persisting an artifact, reported after the
// single create-parents retry.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("delivery write to %s: %v", e.Path, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Writer delivers artifacts into a Wine prefix. The prefix root is injected
// so tests run against a temp directory.
type Writer struct {
	prefix string
}

func NewWriter(prefix string) *Writer {
	return &Writer{prefix: prefix}
}

// Prefix returns the Wine prefix root this writer targets.
func (w *Writer) Prefix() string { return w.prefix }

// Deliver writes the artifact to both records SV2 consumes: the JSON payload
// under users/Public and the bare authorization code in the license dir's cb
// file (next to the cv code-verifier file when one exists). Both writes are
// atomic rename-into-place so a polling reader never sees a partial file.
// Each successful delivery replaces the previous record; no history is kept.
func (w *Writer) Deliver(art *callback.Artifact) error {
	payload, err := json.MarshalIndent(tokenPayload{
		AuthParams: art.Params,
		Timestamp:  art.ReceivedAt.Unix(),
	}, "", "  ")
	if err != nil {
		return &Error{Path: tokenPayloadRel, Err: err}
	}
	payloadPath := filepath.Join(w.prefix, filepath.FromSlash(tokenPayloadRel))
	if err := writeAtomic(payloadPath, payload); err != nil {
		return &Error{Path: payloadPath, Err: err}
	}

	codePath := w.CodePath()
	if err := writeAtomic(codePath, []byte(art.Code)); err != nil {
		return &Error{Path: codePath, Err: err}
	}
	return nil
}

// CodePath picks the cb file destination: the first license directory that
// already holds a cv file wins, otherwise the steamuser location is used and
// created on demand.
func (w *Writer) CodePath() string {
	candidates := []string{fallbackUser, "Public"}
	if u := os.Getenv("USER"); u != "" {
		candidates = append(candidates, u)
	}
	for _, user := range candidates {
		dir := filepath.Join(w.prefix, filepath.FromSlash(fmt.Sprintf(licenseRelFmt, user)))
		if _, err := os.Stat(filepath.Join(dir, verifierName)); err == nil {
			return filepath.Join(dir, codeFileName)
		}
	}
	return filepath.Join(w.prefix, filepath.FromSlash(fmt.Sprintf(licenseRelFmt, fallbackUser)), codeFileName)
}

type tokenPayload struct {
	AuthParams map[string]string `json:"auth_params"`
	Timestamp  int64             `json:"timestamp"`
}

// writeAtomic writes data to a temp file in the destination directory,
// syncs it, then renames it into place. On the first failure it creates the
// missing parent directories and retries once.
func writeAtomic(path string, data []byte) error {
	if err := writeAtomicOnce(path, data); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeAtomicOnce(path, data)
}

func writeAtomicOnce(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
