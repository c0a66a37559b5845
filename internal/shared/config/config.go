package config

import (
	"errors"
	"os"
	"path/filepath"
)

// DefaultRelPath 未指定路径时从当前目录向上查找的配置文件。
const DefaultRelPath = "configs/conf.yml"

// ErrNotFound 找不到配置文件。
var ErrNotFound = errors.New("config file not exist")

// Resolve 决定最终使用的配置文件路径：
// 1) 传入 cfgName（相对/绝对路径）则优先使用；
// 2) 否则从当前目录开始向上查找 `configs/conf.yml`。
func Resolve(cfgName string) (string, error) {
	curDir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if cfgName != "" {
		if !filepath.IsAbs(cfgName) {
			cfgName = filepath.Join(curDir, cfgName)
		}
		if !fileExist(cfgName) {
			return "", &PathError{Path: cfgName}
		}
		return cfgName, nil
	}
	return findUpward(curDir, DefaultRelPath)
}

func findUpward(startDir, rel string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, rel)
		if fileExist(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &PathError{Path: filepath.Join(startDir, rel), Upward: true}
		}
		dir = parent
	}
}

// PathError 配置文件不存在。
type PathError struct {
	Path   string
	Upward bool
}

func (e *PathError) Error() string {
	if e.Upward {
		return "config file not exist, searched upward from: " + e.Path
	}
	return "config file not exist, configPath=" + e.Path
}

func (e *PathError) Unwrap() error { return ErrNotFound }

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
