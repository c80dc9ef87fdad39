// Package mmfile provides platform-specific helpers for obtaining memory
// regions: private anonymous mappings and shared file mappings. Platforms
// without mmap get word-aligned heap memory instead.
package mmfile
