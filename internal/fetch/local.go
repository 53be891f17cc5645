package fetch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// copyTree mirrors <source>/<campaignID> into destDir, overwriting files that
// already exist.
func copyTree(ctx context.Context, source, campaignID, destDir string) error {
	root := filepath.Join(source, campaignID)
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("campaign %q not found under %s: %w", campaignID, source, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	copied := 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		target := filepath.Join(destDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		copied++
		return copyFile(path, target)
	})
	if err != nil {
		return err
	}
	if copied == 0 {
		return fmt.Errorf("campaign %q has no files under %s", campaignID, source)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
