package logging

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Init направляет стандартный логгер в stdout и, если задан path, в файл
// с ротацией. Возвращает функцию закрытия файла.
// Init routes the standard logger to stdout and an optional rotating file.
func Init(path string) func() error {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if path == "" {
		log.SetOutput(os.Stdout)
		return func() error { return nil }
	}

	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // MB
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, writer))
	log.Printf("Логирование в файл %s включено", path)
	return writer.Close
}
