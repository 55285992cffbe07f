// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the WordLens reading assistant server and CLI.

WordLens finds dictionary words and phrases inside running text and reports
each match with its meanings. Matching runs on an Aho-Corasick automaton built
once from the loaded dictionaries; overlapping candidates are resolved so the
result never contains two spans sharing a character, with phrases and longer
matches taking precedence.

# Usage

Start the IPC server for an editor or reader plugin:

	wordlens serve --dict dicts/

Keep dictionaries in sync with the filesystem:

	wordlens serve --dict dicts/ --watch

Annotate a file or a saved web page:

	wordlens scan chapter.txt
	wordlens scan article.html --json

Explore interactively:

	wordlens repl -d

# Dictionaries

Dictionaries are JSON, YAML, TOML or MessagePack maps from key to meaning
fields, optionally zstd compressed (.zst). Files whose name contains the phrase
marker ("phrases" by default) hold phrases; all others hold words:

	{"springer_verb": {"translation": "runs", "partOfSpeech": "verb", "baseForm": "springe"}}

The part of a key after the first underscore only disambiguates homonyms.

# Configuration

Runtime configuration lives in config.toml under the user config dir and is
created with defaults on first run. WORDLENS_* environment variables override
file values:

	[dict]
	paths = ["data"]
	phrase_marker = "phrases"
	watch = false

	[server]
	codec = "msgpack"
	max_text_length = 100000
	cache_size = 256

	[log]
	level = "info"
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordlens/cmd/wordlens/cmd"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func main() {
	sigHandler()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
