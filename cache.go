package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/thiremani/exprlower/compiler"
)

const (
	OUT_DIR   = "out"
	LOCK_FILE = ".lock"
	HASH_FILE = ".hash"

	IR_SUFFIX   = ".ir"
	LL_SUFFIX   = ".ll"
	SYMS_SUFFIX = ".syms"

	keepOutputs   = 5
	minOutputAge  = 7 * 24 * 60 * 60
	cacheEnv      = "EXPRLOWER_CACHE"
	cacheDirName  = "exprlower"
	hashDirLength = 8
)

// defaultCacheDir returns $EXPRLOWER_CACHE, or the per user cache
// directory of the platform.
func defaultCacheDir() string {
	if env := os.Getenv(cacheEnv); env != "" {
		return env
	}

	homeDir, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LocalAppData"); localAppData != "" {
			return filepath.Join(localAppData, cacheDirName)
		}
		return filepath.Join(homeDir, "AppData", "Local", cacheDirName)
	case "darwin":
		return filepath.Join(homeDir, "Library", "Caches", cacheDirName)
	default:
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, cacheDirName)
		}
		return filepath.Join(homeDir, ".cache", cacheDirName)
	}
}

// isHashDir reports names produced by outputKey.
func isHashDir(name string) bool {
	if len(name) != hashDirLength {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}

// outputKey hashes everything that changes what lowering emits for a
// sample set: the tool version, the options and the sample names.
func outputKey(opts compiler.Options, names []string) (shortHash, fullHash string) {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", Version, Commit)
	fmt.Fprintf(h, "bounds=%t asserts=%t invariants=%t\x00", opts.BoundsCheck, opts.Asserts, opts.Invariants)
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
	}
	fullHash = hex.EncodeToString(h.Sum(nil))
	return fullHash[:hashDirLength], fullHash
}

// cleanupOldOutputs removes output directories beyond the keep most
// recent, and only those older than minAge seconds, since a concurrent
// run may still be reading a recent one.
func cleanupOldOutputs(outRoot string, keep int, minAge int64) {
	entries, err := os.ReadDir(outRoot)
	if err != nil || len(entries) <= keep {
		return
	}

	type dirInfo struct {
		name  string
		mtime int64
	}
	var dirs []dirInfo
	for _, e := range entries {
		if e.IsDir() && isHashDir(e.Name()) {
			if info, err := e.Info(); err == nil {
				dirs = append(dirs, dirInfo{e.Name(), info.ModTime().Unix()})
			}
		}
	}
	if len(dirs) <= keep {
		return
	}

	cutoff := time.Now().Unix() - minAge
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].mtime < dirs[j].mtime })
	for i := 0; i < len(dirs)-keep; i++ {
		if dirs[i].mtime < cutoff {
			path := filepath.Join(outRoot, dirs[i].name)
			if err := os.RemoveAll(path); err != nil {
				fmt.Printf("warning: failed to remove old output %s: %v\n", path, err)
			}
		}
	}
}

// writeOutputs stores files under cacheDir/out/<hash>. The whole update
// runs under a file lock; the hash file is written last and marks the
// directory complete. It returns the directory and whether an earlier
// complete run was reused.
func writeOutputs(cacheDir, shortHash, fullHash string, files map[string][]byte) (string, bool, error) {
	outRoot := filepath.Join(cacheDir, OUT_DIR)
	if err := os.MkdirAll(outRoot, 0755); err != nil {
		return "", false, fmt.Errorf("create output dir: %w", err)
	}

	lock := flock.New(filepath.Join(outRoot, LOCK_FILE))
	if err := lock.Lock(); err != nil {
		return "", false, fmt.Errorf("acquire output lock: %w", err)
	}
	defer lock.Unlock()

	dir := filepath.Join(outRoot, shortHash)
	hashFile := filepath.Join(dir, HASH_FILE)
	if stored, err := os.ReadFile(hashFile); err == nil {
		if string(stored) == fullHash && complete(dir, files) {
			now := time.Now()
			os.Chtimes(dir, now, now)
			return dir, true, nil
		}
		fmt.Printf("Output hash mismatch, rewriting: %s\n", dir)
		if err := os.RemoveAll(dir); err != nil {
			return "", false, fmt.Errorf("remove stale output: %w", err)
		}
	}

	cleanupOldOutputs(outRoot, keepOutputs, minOutputAge)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", false, fmt.Errorf("create output dir: %w", err)
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), files[name], 0644); err != nil {
			return "", false, fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := os.WriteFile(hashFile, []byte(fullHash), 0644); err != nil {
		return "", false, fmt.Errorf("write hash file: %w", err)
	}
	return dir, false, nil
}

// complete reports whether dir holds every file with the same content.
func complete(dir string, files map[string][]byte) bool {
	for name, data := range files {
		have, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil || string(have) != string(data) {
			return false
		}
	}
	return true
}
