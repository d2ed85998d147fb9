// Package keysource は鍵テキストの読み込み元を提供する。
package keysource

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir はディレクトリ配下の名前付きファイルから鍵を読み込む。
type Dir string

// LoadBytes はdir/nameの内容を返す。
func (d Dir) LoadBytes(ctx context.Context, name string) ([]byte, error) {
	return readFile(filepath.Join(string(d), name))
}

// File は名前に関係なく固定パスから鍵を読み込む。
type File string

// LoadBytes はパスの内容を返す。
func (f File) LoadBytes(ctx context.Context, name string) ([]byte, error) {
	return readFile(string(f))
}

// FS はfs.FS（embed.FSなど）から鍵を読み込む。
type FS struct {
	FS fs.FS
}

// LoadBytes はFS内のnameの内容を返す。
func (s FS) LoadBytes(ctx context.Context, name string) ([]byte, error) {
	b, err := fs.ReadFile(s.FS, name)
	if err != nil {
		return nil, fmt.Errorf("reading embedded key %s: %w", name, err)
	}
	return b, nil
}

// Bytes はメモリ上の鍵テキストをそのまま返す。
type Bytes []byte

// LoadBytes は保持しているバイト列のコピーを返す。
func (b Bytes) LoadBytes(ctx context.Context, name string) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("no key material for %s", name)
	}
	return append([]byte(nil), b...), nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening key file: %w", err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading key file %s: %w", path, err)
	}
	return b, nil
}
