package json

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/drakos74/geotextile/internal/storage"
)

const (
	filename = "%d.events.log"
)

// Registry appends events as json lines, one file per hash.
type Registry struct {
	hash int64
	root string
}

// NewEventRegistry creates a registry under <root>/registry/<path>.
func NewEventRegistry(root, path string) *Registry {
	if root == "" {
		root = storage.DefaultDir
	}
	return &Registry{
		hash: time.Now().Unix(),
		root: filepath.Join(root, storage.RegistryDir, path),
	}
}

func (e *Registry) dir(k storage.K) string {
	return filepath.Join(e.root, k.Model, k.Label)
}

// Add appends the event to the log of the key.
func (e *Registry) Add(k storage.K, value interface{}) error {
	dir := e.dir(k)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not make dir: %s: %w", dir, err)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode value '%+v': %w", value, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, fmt.Sprintf(filename, e.hash)), os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("could not open log file: %w", err)
	}
	defer f.Close()

	if _, err = f.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("could not write log file for '%+v': %w", k, err)
	}
	return nil
}

// GetAll appends the events of all log files for the key to the given slice pointer.
func (e *Registry) GetAll(k storage.K, values interface{}) error {
	ptr := reflect.ValueOf(values)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("only accepting slice pointers as placeholder for the results: %T", values)
	}
	slice := ptr.Elem()
	t := slice.Type().Elem()

	files, err := filepath.Glob(filepath.Join(e.dir(k), "*.events.log"))
	if err != nil {
		return fmt.Errorf("could not list events for '%+v': %w", k, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no events for '%+v': %w", k, storage.NotFoundErr)
	}

	for _, file := range files {
		if err := readLines(file, func(line []byte) error {
			v := reflect.New(t)
			if err := json.Unmarshal(line, v.Interface()); err != nil {
				return fmt.Errorf("could not decode event '%s': %v: %w", string(line), err, storage.CouldNotLoadErr)
			}
			slice = reflect.Append(slice, v.Elem())
			return nil
		}); err != nil {
			return err
		}
	}
	ptr.Elem().Set(slice)
	return nil
}

func readLines(file string, consume func(line []byte) error) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("could not open '%s': %w", file, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := consume(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}
