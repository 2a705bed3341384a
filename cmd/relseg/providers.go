package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// providersFile describes the saved provider configuration. Each section is
// a tagged document handed to the matching registry, e.g.
//
//	embedder:
//	  type: openai
//	  base_url: http://localhost:1234/v1
//	reranker:
//	  type: http
//	  model: rerank-v3.5
//	vector_store:
//	  type: chromem
//	chunk_store:
//	  type: sqlite
type providersFile struct {
	Embedder    yaml.Node `yaml:"embedder"`
	Reranker    yaml.Node `yaml:"reranker"`
	VectorStore yaml.Node `yaml:"vector_store"`
	ChunkStore  yaml.Node `yaml:"chunk_store"`
}

func stackFromFile(r registries, path string) (stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return stack{}, fmt.Errorf("providers file: %w", err)
	}
	var pf providersFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return stack{}, fmt.Errorf("providers file: %w", err)
	}

	var s stack
	if s.embedder, err = fromNode(r.embedders.FromYAML, pf.Embedder, "embedder"); err != nil {
		return stack{}, err
	}
	if s.reranker, err = fromNode(r.rerankers.FromYAML, pf.Reranker, "reranker"); err != nil {
		return stack{}, err
	}
	if s.vectors, err = fromNode(r.vectorStores.FromYAML, pf.VectorStore, "vector_store"); err != nil {
		return stack{}, err
	}
	if s.chunks, err = fromNode(r.chunkStores.FromYAML, pf.ChunkStore, "chunk_store"); err != nil {
		return stack{}, err
	}
	return s, nil
}

func fromNode[T any](build func([]byte) (T, error), node yaml.Node, section string) (T, error) {
	var zero T
	if node.IsZero() {
		return zero, fmt.Errorf("providers file: missing %s section", section)
	}
	data, err := yaml.Marshal(&node)
	if err != nil {
		return zero, err
	}
	out, err := build(data)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", section, err)
	}
	return out, nil
}
