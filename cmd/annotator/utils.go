package main

import "path/filepath"

// identityFromArg приводит путь из аргумента к имени файла, под которым хранятся комментарии
func identityFromArg(arg string) string {
	return filepath.Base(arg)
}
