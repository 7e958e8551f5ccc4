package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"aura/internal/assistant"
)

// FileManager handles list/delete/copy/move requests, confined to a root
// directory (usually the user's home).
type FileManager struct {
	Root string
}

func (f *FileManager) Execute(ctx context.Context, params map[string]string) (assistant.ActionResult, error) {
	op := params["op"]
	switch op {
	case "list":
		return f.list(params["path"])
	case "delete":
		return f.delete(params["path"])
	case "copy":
		return f.transfer(params["path"], params["dest"], false)
	case "move":
		return f.transfer(params["path"], params["dest"], true)
	default:
		return assistant.ActionResult{
			OK:      false,
			Message: fmt.Sprintf("I can't do %q with files.", op),
		}, nil
	}
}

func (f *FileManager) list(dir string) (assistant.ActionResult, error) {
	abs, err := f.resolve(dir)
	if err != nil {
		return assistant.ActionResult{OK: false, Message: err.Error()}, nil
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return assistant.ActionResult{}, fmt.Errorf("list %s: %w", abs, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}

	if len(names) == 0 {
		return assistant.ActionResult{OK: true, Message: "The folder is empty."}, nil
	}
	return assistant.ActionResult{
		OK:      true,
		Message: fmt.Sprintf("There are %d items: %s.", len(names), strings.Join(names, ", ")),
		Payload: map[string]string{"dir": abs},
	}, nil
}

func (f *FileManager) delete(path string) (assistant.ActionResult, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return assistant.ActionResult{OK: false, Message: err.Error()}, nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		return assistant.ActionResult{OK: false, Message: "I couldn't find that file."}, nil
	}
	if info.IsDir() {
		// Directories are too dangerous to remove by voice.
		return assistant.ActionResult{OK: false, Message: "I only delete single files, not folders."}, nil
	}

	if err := os.Remove(abs); err != nil {
		return assistant.ActionResult{}, fmt.Errorf("delete %s: %w", abs, err)
	}
	return assistant.ActionResult{
		OK:      true,
		Message: fmt.Sprintf("Deleted %s.", filepath.Base(abs)),
	}, nil
}

func (f *FileManager) transfer(src, dst string, move bool) (assistant.ActionResult, error) {
	if dst == "" {
		return assistant.ActionResult{OK: false, Message: "Where should it go?"}, nil
	}

	absSrc, err := f.resolve(src)
	if err != nil {
		return assistant.ActionResult{OK: false, Message: err.Error()}, nil
	}
	absDst, err := f.resolve(dst)
	if err != nil {
		return assistant.ActionResult{OK: false, Message: err.Error()}, nil
	}

	if info, err := os.Stat(absDst); err == nil && info.IsDir() {
		absDst = filepath.Join(absDst, filepath.Base(absSrc))
	}

	verb := "Copied"
	if move {
		verb = "Moved"
		err = os.Rename(absSrc, absDst)
	} else {
		err = copyFile(absSrc, absDst)
	}
	if err != nil {
		return assistant.ActionResult{}, fmt.Errorf("%s -> %s: %w", absSrc, absDst, err)
	}

	return assistant.ActionResult{
		OK:      true,
		Message: fmt.Sprintf("%s %s to %s.", verb, filepath.Base(absSrc), absDst),
	}, nil
}

// resolve expands ~, anchors relative paths at the root and refuses paths
// that escape it.
func (f *FileManager) resolve(p string) (string, error) {
	root := f.Root
	if root == "" {
		root, _ = os.UserHomeDir()
	}

	p = strings.TrimSpace(p)
	if p == "" || p == "~" {
		return root, nil
	}
	if strings.HasPrefix(p, "~/") {
		p = filepath.Join(root, p[2:])
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}

	p = filepath.Clean(p)
	if !strings.HasPrefix(p, filepath.Clean(root)+string(os.PathSeparator)) && p != filepath.Clean(root) {
		return "", fmt.Errorf("that path is outside your home folder")
	}
	return p, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
