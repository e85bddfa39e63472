package traits

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// ErrEmptyCatalog is returned when Generate is asked to draw from nothing.
var ErrEmptyCatalog = errors.New("trait catalog is empty")

// Entry is one named attribute of the catalog.
type Entry struct {
	TraitType string `json:"trait_type" yaml:"trait_type"`
	Value     string `json:"value" yaml:"value"`
}

type Catalog []Entry

// Strand is the tagged envelope the registration endpoint expects around
// every metadata string: {"Strand": "..."}.
type Strand struct {
	Strand string `json:"Strand"`
}

// Metadata is the trait pair attached to a minted item.
type Metadata struct {
	TraitType Strand `json:"trait_type"`
	Value     Strand `json:"value"`
}

// DefaultCatalog is the attribute catalog shipped with the factory.
var DefaultCatalog = Catalog{
	{TraitType: "Background", Value: "white"},
	{TraitType: "Body", Value: "body_green"},
	{TraitType: "Eyes", Value: "green_squint"},
	{TraitType: "Glasses", Value: "librarian"},
	{TraitType: "Hats", Value: "mmcHat"},
	{TraitType: "Mouth", Value: "grin"},
	{TraitType: "Shirts", Value: "floral"},
	{TraitType: "Neck", Value: "chain"},
	{TraitType: "Body", Value: "body_orange"},
	{TraitType: "Eyes", Value: "3Eyes"},
	{TraitType: "Glasses", Value: "JohnLennon"},
	{TraitType: "Hats", Value: "Headphones"},
	{TraitType: "Mouth", Value: "tongueOut"},
	{TraitType: "Neck", Value: "alien"},
}

// Generator draws trait metadata from a catalog. The trait type and the value
// come from two independent draws, so they need not belong to the same entry.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// NewSeededGenerator returns a Generator whose draws are reproducible.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (g *Generator) Generate(catalog Catalog) (Metadata, error) {
	if len(catalog) == 0 {
		return Metadata{}, ErrEmptyCatalog
	}

	g.mu.Lock()
	typeIdx := g.rng.IntN(len(catalog))
	valueIdx := g.rng.IntN(len(catalog))
	g.mu.Unlock()

	return Metadata{
		TraitType: Strand{Strand: catalog[typeIdx].TraitType},
		Value:     Strand{Strand: catalog[valueIdx].Value},
	}, nil
}
