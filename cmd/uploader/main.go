package main

import (
	"context"
	"filedrop/internal/client/tus"
	"filedrop/internal/client/uploader"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// uploader sends files to a filedrop server through the resumable endpoint.
//
//	uploader -endpoint https://files.example.com/api/upload -concurrency 3 a.mp4 b.zip
func main() {
	var (
		endpoint    string
		token       string
		concurrency int
		chunkSize   int64
		folderID    string
		verbose     bool
	)
	flag.StringVar(&endpoint, "endpoint", "http://localhost:8080/api/upload", "Resumable upload endpoint")
	flag.StringVar(&token, "token", os.Getenv("FILEDROP_TOKEN"), "Session token, prompted for when empty")
	flag.IntVar(&concurrency, "concurrency", uploader.DefaultConcurrency, "Files uploaded at once")
	flag.Int64Var(&chunkSize, "chunk-size", tus.DefaultChunkSize, "Bytes sent per request")
	flag.StringVar(&folderID, "folder", "", "Folder to upload into")
	flag.BoolVar(&verbose, "v", false, "Log every request retry")
	flag.Parse()

	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: uploader [flags] file...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if token == "" {
		var err error
		token, err = promptToken(os.Stderr)
		if err != nil {
			logger.Error("failed to read token", "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := tus.NewClient(tus.Config{
		Endpoint:  endpoint,
		Token:     token,
		ChunkSize: chunkSize,
	}, nil, logger)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	sources, closeAll, err := openSources(flag.Args())
	if err != nil {
		logger.Error("failed to open files", "error", err)
		os.Exit(1)
	}
	defer closeAll()

	opts := []uploader.Option{uploader.WithConcurrency(concurrency)}
	if folderID != "" {
		opts = append(opts, uploader.WithFolder(folderID))
	}
	queue := uploader.NewQueue(client, opts...)

	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	var (
		printMu   sync.Mutex
		lastPrint time.Time
	)
	queue.OnChange(func(s uploader.Stats) {
		if !interactive {
			return
		}
		printMu.Lock()
		defer printMu.Unlock()
		if time.Since(lastPrint) < 200*time.Millisecond {
			return
		}
		lastPrint = time.Now()
		fmt.Fprintf(os.Stderr, "\r%5.1f%%  %d/%d done  %d active  %d waiting ",
			s.GlobalProgress, s.Completed, s.Total, s.ActiveCount, s.QueueLength)
	})

	ids := queue.Add(sources...)

	if err := queue.Wait(ctx); err != nil {
		for _, id := range ids {
			queue.Pause(id)
		}
		fmt.Fprintln(os.Stderr, "\ninterrupted")
		os.Exit(130)
	}
	if interactive {
		fmt.Fprintln(os.Stderr)
	}

	failed := 0
	for _, item := range queue.Items() {
		switch item.Status {
		case uploader.StatusCompleted:
			fmt.Printf("ok     %s\n", item.Name)
		default:
			failed++
			fmt.Printf("failed %s: %s\n", item.Name, describe(item))
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func describe(item uploader.Item) string {
	if item.LastErrorStatusCode == 0 {
		return item.LastErrorMessage
	}
	return fmt.Sprintf("%s (%d)", item.LastErrorMessage, item.LastErrorStatusCode)
}

func promptToken(w io.Writer) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no token given and stdin is not a terminal")
	}
	if _, err := fmt.Fprint(w, "Session token: "); err != nil {
		return "", err
	}
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

func openSources(paths []string) ([]uploader.Source, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	sources := make([]uploader.Source, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		files = append(files, f)

		info, err := f.Stat()
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		if info.IsDir() {
			closeAll()
			return nil, nil, fmt.Errorf("%s is a directory", path)
		}

		mimeType := mime.TypeByExtension(filepath.Ext(path))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		sources = append(sources, uploader.Source{
			Name:     filepath.Base(path),
			Size:     info.Size(),
			MimeType: mimeType,
			Reader:   f,
		})
	}
	return sources, closeAll, nil
}
