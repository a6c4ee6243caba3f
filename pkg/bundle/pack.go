// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
)

// PackOptions contains options for packing a directory into a bundle.
type PackOptions struct {
	// SourceDir is the module tree to pack.
	SourceDir string
	// OutputPath is the archive to create (defaults to "<name>.zip" or
	// "<dir>.zip" in the current directory).
	OutputPath string
	// Manifest, when set, is written as bundle.toml and replaces any
	// bundle.toml found in SourceDir.
	Manifest *Manifest
}

// Pack creates a zip bundle from a module directory.
// Returns the absolute path to the created archive or an error.
func Pack(opts PackOptions) (string, error) {
	srcDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source directory: %w", err)
	}
	info, err := os.Stat(srcDir)
	if err != nil {
		return "", fmt.Errorf("failed to stat source directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("source %s is not a directory", srcDir)
	}

	var manifestData []byte
	if opts.Manifest != nil {
		if manifestData, err = opts.Manifest.Marshal(); err != nil {
			return "", err
		}
	} else if data, readErr := os.ReadFile(filepath.Join(srcDir, ManifestFile)); readErr == nil {
		if _, err := ParseManifest(data); err != nil {
			return "", &ManifestError{Archive: srcDir, Err: err}
		}
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		name := filepath.Base(srcDir)
		if opts.Manifest != nil {
			name = opts.Manifest.Name
		}
		outputPath = name + Suffix
	}
	absOutputPath, err := filepath.Abs(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}

	zipFile, err := os.Create(absOutputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create ZIP file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)

	err = filepath.WalkDir(srcDir, func(p string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || p == absOutputPath {
			return nil
		}

		relPath, err := filepath.Rel(srcDir, p)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		zipPath := filepath.ToSlash(relPath)
		if zipPath == ManifestFile && manifestData != nil {
			return nil
		}

		fileData, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", p, err)
		}
		fileInfo, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to get file info: %w", err)
		}
		header, err := zip.FileInfoHeader(fileInfo)
		if err != nil {
			return fmt.Errorf("failed to create file header: %w", err)
		}
		header.Name = zipPath
		header.Method = zip.Deflate

		return writeEntry(zipWriter, header, fileData)
	})
	if err == nil && manifestData != nil {
		err = writeEntry(zipWriter, &zip.FileHeader{Name: ManifestFile, Method: zip.Deflate}, manifestData)
	}
	if err == nil {
		err = zipWriter.Close()
	}
	if err != nil {
		// Clean up on failure
		zipWriter.Close()
		zipFile.Close()
		os.Remove(absOutputPath)
		return "", fmt.Errorf("failed to pack bundle: %w", err)
	}

	return absOutputPath, nil
}

func writeEntry(zw *zip.Writer, header *zip.FileHeader, data []byte) error {
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create ZIP entry: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write file data: %w", err)
	}
	return nil
}
