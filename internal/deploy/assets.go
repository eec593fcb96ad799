package deploy

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"unicode/utf8"
)

var (
	// ErrEntryPointMissing means the CLI was not started next to the entry point.
	ErrEntryPointMissing = errors.New("entry point not found")
	// ErrBuildMissing means the front end has not been built.
	ErrBuildMissing = errors.New("index.html not found")
)

// CollectAssets reads the entry point, <dist>/index.html and every regular
// file in <dist>/assets.  Keys are slash-separated paths relative to the
// working directory.  A missing or unreadable assets directory is reported
// through warn and does not fail the collection.
func CollectAssets(entryPoint, distDir string, warn func(format string, args ...any)) (map[string]Asset, error) {
	if warn == nil {
		warn = func(string, ...any) {}
	}
	assets := make(map[string]Asset)

	if err := addFile(assets, entryPoint); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrEntryPointMissing, entryPoint)
		}
		return nil, err
	}

	index := filepath.Join(distDir, "index.html")
	if err := addFile(assets, index); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBuildMissing, filepath.ToSlash(index))
		}
		return nil, err
	}

	dir := filepath.Join(distDir, "assets")
	entries, err := os.ReadDir(dir)
	if err != nil {
		warn("could not read assets directory: %v", err)
		return assets, nil
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := addFile(assets, filepath.Join(dir, e.Name())); err != nil {
			return nil, err
		}
	}
	return assets, nil
}

func addFile(assets map[string]Asset, name string) error {
	content, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	assets[path.Clean(filepath.ToSlash(name))] = fileAsset(content)
	return nil
}

// fileAsset sends text as is and anything else (images, fonts) base64
// encoded, since JSON strings cannot carry invalid UTF-8.
func fileAsset(content []byte) Asset {
	if utf8.Valid(content) {
		return Asset{Kind: "file", Content: string(content), Encoding: "utf-8"}
	}
	return Asset{Kind: "file", Content: base64.StdEncoding.EncodeToString(content), Encoding: "base64"}
}
