package files

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Максимальный суммарный размер одного запроса на загрузку
const MaxUploadBytes = 100 << 20 // 100MiB

var (
	ErrNotFound       = errors.New("file not found")
	ErrTypeNotAllowed = errors.New("file type not allowed")
	ErrEmptyName      = errors.New("no selected file")
)

var allowedExtensions = map[string]bool{
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"pdf": true, "txt": true, "docx": true, "xlsx": true,
	"pptx": true, "mp4": true,
}

var iconByExtension = map[string]string{
	"png": "🖼️", "jpg": "🖼️", "jpeg": "🖼️", "gif": "🖼️",
	"pdf": "📄",
	"txt": "📝", "csv": "📝", "json": "📝",
	"docx": "📑", "doc": "📑",
	"xlsx": "📊", "xls": "📊",
	"pptx": "📊", "ppt": "📊",
	"mp4": "🎬",
}

const defaultIcon = "📁"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

type Entry struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified int64  `json:"modified"`
	Type     string `json:"type"`
	Icon     string `json:"icon"`
}

// Registry управляет файлами общей директории
type Registry struct {
	dir string

	// Сериализует проверку коллизий и создание файла
	mu sync.Mutex
}

func NewRegistry(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Registry{dir: dir}, nil
}

// Allowed проверяет расширение по фиксированному списку
func Allowed(filename string) bool {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[idx+1:])]
}

// Sanitize убирает компоненты пути и небезопасные символы из имени
func Sanitize(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, " ", "_")
	filename = unsafeChars.ReplaceAllString(filename, "")
	return strings.Trim(filename, "._")
}

// List возвращает метаданные всех обычных файлов директории
func (r *Registry) List() ([]Entry, error) {
	dirents, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		if !de.Type().IsRegular() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:     de.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().Unix(),
			Type:     guessType(de.Name()),
			Icon:     iconFor(de.Name()),
		})
	}
	return entries, nil
}

// Store сохраняет содержимое src под безопасным именем и возвращает
// имя, под которым файл лег на диск. Существующие файлы никогда не
// перезаписываются: при коллизии к имени добавляется числовой суффикс.
func (r *Registry) Store(filename string, src io.Reader) (string, error) {
	if filename == "" {
		return "", ErrEmptyName
	}
	if !Allowed(filename) {
		return "", ErrTypeNotAllowed
	}

	name := Sanitize(filename)
	if name == "" || !Allowed(name) {
		return "", ErrTypeNotAllowed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	final := name
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(r.dir, final)); os.IsNotExist(err) {
			break
		}
		final = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}

	dst, err := os.OpenFile(filepath.Join(r.dir, final), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	return final, nil
}

// Resolve возвращает путь к файлу внутри директории. Имена с
// компонентами пути отклоняются независимо от того, куда они ведут.
func (r *Registry) Resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filepath.Clean(filename)) {
		return "", ErrNotFound
	}
	if strings.ContainsAny(filename, `/\`) || filename == ".." || filename == "." {
		return "", ErrNotFound
	}

	full := filepath.Join(r.dir, filename)
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	return full, nil
}

func guessType(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func iconFor(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return defaultIcon
	}
	if icon, ok := iconByExtension[strings.ToLower(filename[idx+1:])]; ok {
		return icon
	}
	return defaultIcon
}
