package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/mjones3/event-governance-poc/internal/progress"
)

// Stats tracks the outcome of a demo run.
type Stats struct {
	Total    int
	Valid    int
	Invalid  int
	Success  int
	Failed   int
	Duration time.Duration
}

// Rate returns orders per second over the run.
func (s Stats) Rate() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Total) / s.Duration.Seconds()
}

// Runner drives a batch of demo orders against the order service.
type Runner struct {
	Client      *Client
	Generator   *Generator
	Reporter    progress.Reporter
	Count       int
	InvalidRate int           // percentage 0..100
	Delay       time.Duration // pause between requests
}

// Run generates the batch, shuffles it and sends every order, reporting
// progress along the way. The health endpoint is checked first so a dead
// service fails fast instead of producing a page of transport errors.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	if err := r.Client.Health(ctx); err != nil {
		return Stats{}, err
	}

	invalidCount := r.Count * r.InvalidRate / 100
	validCount := r.Count - invalidCount

	batch := make([]Batch, 0, r.Count)
	for i := 0; i < validCount; i++ {
		batch = append(batch, Batch{Order: r.Generator.Valid(i), Valid: true})
	}
	for i := 0; i < invalidCount; i++ {
		order, kind := r.Generator.Invalid(i)
		batch = append(batch, Batch{Order: order, Kind: kind})
	}
	r.Generator.Shuffle(batch)

	stats := Stats{Valid: validCount, Invalid: invalidCount}
	start := time.Now()

	if r.Reporter != nil {
		r.Reporter.Start(len(batch))
	}
	for i, b := range batch {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		result := r.Client.SendOrder(ctx, b.Order)
		stats.Total++
		if result.Success {
			stats.Success++
		} else {
			stats.Failed++
		}

		if r.Reporter != nil {
			id, _ := b.Order["orderId"].(string)
			r.Reporter.Update(i+1, fmt.Sprintf("%s (%d ok, %d failed)", id, stats.Success, stats.Failed))
		}

		if r.Delay > 0 && i < len(batch)-1 {
			select {
			case <-time.After(r.Delay):
			case <-ctx.Done():
				return stats, ctx.Err()
			}
		}
	}
	if r.Reporter != nil {
		r.Reporter.Finish()
	}

	stats.Duration = time.Since(start)
	return stats, nil
}
