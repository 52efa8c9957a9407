package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bookscout/internal/filter"
)

// filterFlags holds the predicate selection shared by recommend and scan.
type filterFlags struct {
	requireGenres    []string
	avoidGenres      []string
	minRating        float64
	requireAudiobook bool
	weightedShelves  []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.requireGenres, "require-genre", nil, "Only keep books carrying this genre (repeatable)")
	cmd.Flags().StringArrayVar(&f.avoidGenres, "avoid-genre", nil, "Drop books carrying this genre (repeatable)")
	cmd.Flags().Float64Var(&f.minRating, "min-rating", 0, "Drop books with a lower average rating")
	cmd.Flags().BoolVar(&f.requireAudiobook, "require-audiobook", false, "Only keep books with an audiobook edition")
	cmd.Flags().StringArrayVar(&f.weightedShelves, "weighted-shelf", nil, "Shelf weight as name=weight with weight in [-1,1] (repeatable)")
}

// predicate translates the flags into a filter predicate. It returns nil
// when no filter flag was set.
func (f *filterFlags) predicate() (filter.Predicate, error) {
	weighted := len(f.weightedShelves) > 0
	strict := len(f.requireGenres) > 0 || len(f.avoidGenres) > 0

	if weighted && strict {
		return nil, errors.New("weighted-shelf cannot be combined with require-genre or avoid-genre")
	}
	if weighted {
		weights, err := parseShelfWeights(f.weightedShelves)
		if err != nil {
			return nil, err
		}
		return filter.Weighted(weights, f.minRating, f.requireAudiobook), nil
	}
	if strict || f.minRating > 0 || f.requireAudiobook {
		return filter.Strict(f.requireGenres, f.avoidGenres, f.minRating, f.requireAudiobook), nil
	}
	return nil, nil
}

func parseShelfWeights(specs []string) (map[string]float64, error) {
	weights := make(map[string]float64, len(specs))
	for _, spec := range specs {
		name, value, ok := strings.Cut(spec, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid shelf weight %q, expected name=weight", spec)
		}
		weight, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid shelf weight %q: %w", spec, err)
		}
		if weight < -1 || weight > 1 {
			return nil, fmt.Errorf("shelf weight %q outside [-1, 1]", spec)
		}
		weights[name] = weight
	}
	return weights, nil
}
