package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"relseg/internal/chunker"
	"relseg/internal/chunkstore"
	"relseg/internal/config"
	"relseg/internal/embcache"
	"relseg/internal/llm"
	"relseg/internal/llm/openai"
	"relseg/internal/logging"
	"relseg/internal/models"
	"relseg/internal/provider"
	"relseg/internal/rank"
	"relseg/internal/reranker"
	"relseg/internal/rse"
	"relseg/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "index":
		if err := indexCmd(cfg, os.Args[2:]); err != nil {
			logger.Error("index failed", "err", err)
			os.Exit(1)
		}
	case "query":
		if err := queryCmd(cfg, os.Args[2:]); err != nil {
			logger.Error("query failed", "err", err)
			os.Exit(1)
		}
	case "presets":
		for _, n := range rse.PresetNames() {
			fmt.Println(n)
		}
	case "help", "-h", "--help":
		usage()
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`relseg - relevant segment extraction over a chunked corpus

usage:
  relseg index <dir>                 chunk, embed and store .txt/.md files
  relseg query [-preset name] <q>... run one or more queries
  relseg presets                     list known presets`)
}

// registries hold the provider constructors this process offers. Registration
// is explicit at startup; a providers file can only name what is here.
type registries struct {
	embedders    *provider.Registry[llm.Embedder]
	rerankers    *provider.Registry[reranker.Reranker]
	vectorStores *provider.Registry[vectorstore.VectorStore]
	chunkStores  *provider.Registry[chunkstore.ChunkStore]
}

func newRegistries(cfg config.Config) registries {
	r := registries{
		embedders:    provider.NewRegistry[llm.Embedder]("embedder"),
		rerankers:    provider.NewRegistry[reranker.Reranker]("reranker"),
		vectorStores: provider.NewRegistry[vectorstore.VectorStore]("vector store"),
		chunkStores:  provider.NewRegistry[chunkstore.ChunkStore]("chunk store"),
	}
	r.embedders.Register("openai", func(p map[string]any) (llm.Embedder, error) {
		c := openai.New(
			provider.String(p, "base_url", cfg.OpenAIBaseURL),
			provider.String(p, "api_key", cfg.OpenAIAPIKey),
		)
		return embcache.New(c, provider.Int(p, "cache_size", cfg.EmbedCacheSize))
	})
	r.rerankers.Register("none", func(p map[string]any) (reranker.Reranker, error) {
		return reranker.Noop{}, nil
	})
	r.rerankers.Register("http", func(p map[string]any) (reranker.Reranker, error) {
		base := provider.String(p, "base_url", cfg.RerankBaseURL)
		if base == "" {
			return nil, fmt.Errorf("http reranker: base_url required")
		}
		return reranker.NewHTTP(base,
			provider.String(p, "api_key", cfg.RerankAPIKey),
			provider.String(p, "model", cfg.RerankModel)), nil
	})
	r.vectorStores.Register("chromem", func(p map[string]any) (vectorstore.VectorStore, error) {
		return vectorstore.NewChromem(provider.String(p, "path", cfg.VectorPath()))
	})
	r.vectorStores.Register("memory", func(p map[string]any) (vectorstore.VectorStore, error) {
		return vectorstore.NewMemory(), nil
	})
	r.chunkStores.Register("sqlite", func(p map[string]any) (chunkstore.ChunkStore, error) {
		return chunkstore.NewSQLite(provider.String(p, "path", cfg.SQLitePath()))
	})
	r.chunkStores.Register("memory", func(p map[string]any) (chunkstore.ChunkStore, error) {
		return chunkstore.NewMemory(), nil
	})
	return r
}

type stack struct {
	embedder llm.Embedder
	reranker reranker.Reranker
	vectors  vectorstore.VectorStore
	chunks   chunkstore.ChunkStore
}

// buildStack wires the default providers, or rebuilds them from the tagged
// yaml sections of a providers file when one is configured.
func buildStack(cfg config.Config) (stack, error) {
	r := newRegistries(cfg)
	if cfg.ProvidersFile != "" {
		return stackFromFile(r, cfg.ProvidersFile)
	}
	rerankTag := "none"
	if cfg.RerankBaseURL != "" {
		rerankTag = "http"
	}
	var s stack
	var err error
	if s.embedder, err = r.embedders.New("openai", nil); err != nil {
		return stack{}, err
	}
	if s.reranker, err = r.rerankers.New(rerankTag, nil); err != nil {
		return stack{}, err
	}
	if s.vectors, err = r.vectorStores.New("chromem", nil); err != nil {
		return stack{}, err
	}
	if s.chunks, err = r.chunkStores.New("sqlite", nil); err != nil {
		return stack{}, err
	}
	return s, nil
}

func indexCmd(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	chunkSize := fs.Int("chunk-size", 1000, "max chunk size in characters")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: relseg index <dir>")
	}
	dir := fs.Arg(0)

	s, err := buildStack(cfg)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel)
	ctx := context.Background()

	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		docID, err := filepath.Rel(dir, path)
		if err != nil {
			docID = path
		}
		chunks := chunker.Split(docID, string(data), *chunkSize)
		if len(chunks) == 0 {
			return nil
		}
		if err := s.chunks.Put(ctx, chunks); err != nil {
			return err
		}
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		vecs, err := s.embedder.Embeddings(ctx, cfg.EmbeddingModel, texts)
		if err != nil {
			return err
		}
		items := make([]vectorstore.Item, len(chunks))
		for i, c := range chunks {
			items[i] = vectorstore.Item{DocID: c.DocID, Index: c.Index, Vector: vecs[i], Text: c.Text}
		}
		if err := s.vectors.Upsert(ctx, items); err != nil {
			return err
		}
		logger.Info("indexed", "doc", docID, "chunks", len(chunks))
		return nil
	})
}

func queryCmd(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	presetName := fs.String("preset", cfg.Preset, "selection preset")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: relseg query [-preset name] <query>...")
	}

	s, err := buildStack(cfg)
	if err != nil {
		return err
	}
	agg, err := rank.NewAggregator(cfg.Aggregation, nil)
	if err != nil {
		return err
	}
	engine := &rse.Engine{
		Embedder:   s.embedder,
		Model:      cfg.EmbeddingModel,
		Vectors:    s.vectors,
		Chunks:     s.chunks,
		Aggregator: agg,
		TopK:       cfg.TopK,
		Log:        logging.New(cfg.LogLevel),
	}
	// A nil reranker skips the candidate text fetch entirely.
	if _, noop := s.reranker.(reranker.Noop); !noop {
		engine.Reranker = s.reranker
	}
	segments, err := engine.Query(context.Background(), fs.Args(), rse.Options{PresetName: *presetName})
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		fmt.Println("no relevant segments found")
		return nil
	}
	for i, seg := range segments {
		printSegment(i, seg)
	}
	return nil
}

func printSegment(i int, seg models.Segment) {
	fmt.Printf("--- %d. %s chunks %d-%d (score %.3f)\n", i+1, seg.DocID, seg.Start, seg.End, seg.Score)
	fmt.Println(seg.Content)
	fmt.Println()
}
