package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordlens/pkg/config"
	"github.com/bastiangx/wordlens/pkg/dictionary"
	"github.com/bastiangx/wordlens/pkg/domain"
	"github.com/charmbracelet/log"
)

// Server handles the IPC for text annotation
type Server struct {
	manager    *dictionary.Manager
	loader     *dictionary.Loader
	config     *config.Config
	configPath string
	codec      Codec

	mu       sync.Mutex // guards config
	requests int64
}

// NewServer creates a server on stdin/stdout using the configured codec.
func NewServer(manager *dictionary.Manager, loader *dictionary.Loader, cfg *config.Config, configPath string) (*Server, error) {
	return NewServerWithIO(manager, loader, cfg, configPath, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on arbitrary streams.
func NewServerWithIO(manager *dictionary.Manager, loader *dictionary.Loader, cfg *config.Config, configPath string, r io.Reader, w io.Writer) (*Server, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	codec, err := NewCodec(cfg.Server.Codec, r, w)
	if err != nil {
		return nil, err
	}
	return &Server{
		manager:    manager,
		loader:     loader,
		config:     cfg,
		configPath: configPath,
		codec:      codec,
	}, nil
}

// Start signals readiness and serves requests until input ends or ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	log.Debugf("Starting server with %s codec", s.codec.Name())
	s.send(StatusResponse{Status: "ready", Ready: s.manager.Ready()})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		req, err := s.codec.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Input closed, stopping server")
				return nil
			}
			if errors.Is(err, errMalformed) {
				log.Errorf("Decoding request: %v", err)
				s.sendError("", "Invalid request", CodeBadRequest)
				continue
			}
			log.Errorf("Reading request: %v", err)
			return err
		}
		s.requests++
		s.handleRequest(req)
	}
}

// Requests returns how many requests were decoded.
func (s *Server) Requests() int64 {
	return s.requests
}

func (s *Server) handleRequest(req Request) {
	switch req.Command {
	case "find":
		s.handleFind(req)
	case "complete":
		s.handleComplete(req)
	case "lookup":
		s.handleLookup(req)
	case "load":
		s.handleLoad(req)
	case "remove":
		s.handleRemove(req)
	case "list":
		s.sendDictionaries(req.ID, "ok", dictionary.LoadStats{})
	case "stats":
		s.send(StatsResponse{ID: req.ID, Stats: s.manager.Statistics()})
	case "config":
		s.handleConfig(req)
	case "health":
		s.send(StatusResponse{
			ID:      req.ID,
			Status:  "ok",
			Ready:   s.manager.Ready(),
			Formats: dictionary.SupportedExtensions(),
		})
	case "":
		s.sendError(req.ID, "Missing 'cmd' field", CodeBadRequest)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown command: %s", req.Command), CodeBadRequest)
	}
}

func (s *Server) send(response any) {
	if err := s.codec.Write(response); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}

func (s *Server) maxTextLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Server.MaxTextLength
}

func (s *Server) handleFind(req Request) {
	if limit := s.maxTextLength(); utf8.RuneCountInString(req.Text) > limit {
		s.sendError(req.ID, fmt.Sprintf("text exceeds maximum length of %d characters", limit), CodeTooLarge)
		return
	}

	start := time.Now()
	anns, err := s.manager.FindInText(req.Text)
	if err != nil {
		if errors.Is(err, domain.ErrNotBuilt) {
			s.sendError(req.ID, "dictionaries are not loaded", CodeUnavailable)
			return
		}
		s.sendError(req.ID, err.Error(), CodeInternal)
		return
	}
	items := toAnnotationItems(anns)
	s.send(FindResponse{
		ID:          req.ID,
		Annotations: items,
		Count:       len(items),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) handleComplete(req Request) {
	if req.Prefix == "" {
		s.sendError(req.ID, "Missing 'prefix' parameter", CodeBadRequest)
		return
	}
	start := time.Now()
	suggestions := s.manager.Complete(req.Prefix, req.Limit)
	items := make([]CompletionItem, len(suggestions))
	for i, sg := range suggestions {
		items[i] = CompletionItem{
			Pattern:     sg.Pattern,
			Kind:        sg.Kind.String(),
			Translation: sg.Translation,
			Meanings:    sg.Meanings,
			Rank:        uint16(i + 1),
		}
	}
	s.send(CompletionResponse{
		ID:          req.ID,
		Suggestions: items,
		Count:       len(items),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) handleLookup(req Request) {
	if req.Pattern == "" {
		s.sendError(req.ID, "Missing 'pattern' parameter", CodeBadRequest)
		return
	}
	entry, ok := s.manager.Lookup(req.Pattern)
	if !ok {
		s.sendError(req.ID, fmt.Sprintf("pattern not found: %s", req.Pattern), CodeNotFound)
		return
	}
	s.send(LookupResponse{
		ID:       req.ID,
		Pattern:  entry.Pattern,
		Kind:     entry.Kind.String(),
		Meanings: toMeaningItems(entry.Meanings),
	})
}

func (s *Server) handleLoad(req Request) {
	if req.Path == "" {
		s.sendError(req.ID, "Missing 'path' parameter", CodeBadRequest)
		return
	}
	src, err := s.loader.LoadFile(req.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.sendError(req.ID, err.Error(), CodeNotFound)
			return
		}
		s.sendError(req.ID, err.Error(), CodeBadRequest)
		return
	}
	stats := s.manager.AddDictionary(src)
	log.Infof("Loaded dictionary %s: %d entries, %d skipped", src.ID, stats.Entries, stats.Skipped)
	s.sendDictionaries(req.ID, "loaded", stats)
}

func (s *Server) handleRemove(req Request) {
	if req.Dict == "" {
		s.sendError(req.ID, "Missing 'dict' parameter", CodeBadRequest)
		return
	}
	removed, stats := s.manager.RemoveDictionary(req.Dict)
	if !removed {
		s.sendError(req.ID, fmt.Sprintf("dictionary not loaded: %s", req.Dict), CodeNotFound)
		return
	}
	s.sendDictionaries(req.ID, "removed", stats)
}

func (s *Server) sendDictionaries(id, status string, stats dictionary.LoadStats) {
	s.send(DictionaryResponse{
		ID:           id,
		Status:       status,
		Dictionaries: toDictionaryItems(s.manager.Dictionaries()),
		Patterns:     stats.Patterns,
		Skipped:      stats.Skipped,
	})
}

func (s *Server) handleConfig(req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.MaxTextLength != nil && *req.MaxTextLength <= 0 {
		s.sendError(req.ID, "max_text_length must be positive", CodeBadRequest)
		return
	}
	if req.CacheSize != nil && *req.CacheSize < 0 {
		s.sendError(req.ID, "cache_size must not be negative", CodeBadRequest)
		return
	}

	status := "ok"
	if req.MaxTextLength != nil || req.CacheSize != nil || req.ShowRelated != nil {
		if err := s.config.Update(s.configPath, req.MaxTextLength, req.CacheSize, req.ShowRelated); err != nil {
			log.Warnf("Failed to save config to %s: %v", s.configPath, err)
			status = "unsaved"
		} else {
			status = "updated"
		}
		if req.CacheSize != nil {
			s.manager.SetCacheSize(s.config.Server.CacheSize)
		}
	}
	s.send(ConfigResponse{
		ID:            req.ID,
		Status:        status,
		Codec:         s.codec.Name(),
		MaxTextLength: s.config.Server.MaxTextLength,
		CacheSize:     s.config.Server.CacheSize,
		ShowRelated:   s.config.CLI.ShowRelated,
	})
}
