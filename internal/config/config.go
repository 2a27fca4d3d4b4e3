package config

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

type Config struct {
	Listen     string `json:"listen"`
	Database   string `json:"database"`
	TimeoutSec int    `json:"timeoutSec"`
	Pexels     struct {
		Key string `json:"key"`
	} `json:"pexels.com"`
	Unsplash struct {
		AccessKey string `json:"access"`
		SecretKey string `json:"secret"`
	} `json:"unsplash.com"`
	Pixabay struct {
		Key string `json:"key"`
	} `json:"pixabay.com"`
	Auth struct {
		Disabled bool `json:"disabled"`
	} `json:"auth"`
	Debug struct {
		PrettyJson bool `json:"prettyJson"`
	} `json:"debug"`
}

// Load reads the JSON config file. Syntax errors are reported with the line
// and position of the offending byte.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Config{}
	decoder := json.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			f.Seek(0, io.SeekStart)
			pos := findPos(bufio.NewReader(f), int(syntaxErr.Offset))
			return nil, fmt.Errorf("unable to decode configuration file (Line: %d, Pos: %d): %v", pos.line, pos.pos, err)
		}
		return nil, fmt.Errorf("unable to decode configuration file: %w", err)
	}

	if cfg.Listen == "" {
		cfg.Listen = ":8081"
	}
	if cfg.Database == "" {
		cfg.Database = "data/cache.db"
	}
	if cfg.TimeoutSec <= 0 {
		cfg.TimeoutSec = 15
	}
	return &cfg, nil
}

type filePos struct {
	line int
	pos  int
}

func findPos(file *bufio.Reader, offset int) filePos {
	p := filePos{line: 1, pos: offset}
	var lineLen int
	for line, err := file.ReadBytes('\n'); len(line) > 0 && err == nil; line, err = file.ReadBytes('\n') {
		if p.pos < len(line) {
			return p
		}
		lineLen += len(line)
		if line[len(line)-1] == '\n' {
			p.line += 1
			p.pos -= lineLen
			lineLen = 0
		}
	}
	return p
}
