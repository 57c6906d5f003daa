package main

import (
	"context"
	"fmt"
	"log"

	"github.com/firstservice/askbank"
	"github.com/firstservice/askbank/core/pipeline"
	"github.com/firstservice/askbank/helper"
)

// Prints store statistics, recent audit activity and any owners whose
// query volume exceeds the anomaly threshold.
func main() {
	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		log.Fatalf("Failed to read database configuration: %v", err)
	}

	a, err := askbank.NewAskBank(dbConfig, pipeline.OllamaDefaultDim)
	if err != nil {
		log.Fatalf("Failed to create askbank: %v", err)
	}
	defer a.Close()

	ctx := context.Background()

	stats, err := a.Stats(ctx, 10)
	if err != nil {
		log.Fatalf("Failed to collect stats: %v", err)
	}

	fmt.Printf("Chunks stored:   %d\n", stats.TotalChunks)
	fmt.Printf("Audit entries:   %d\n", stats.TotalEntries)
	fmt.Printf("Average latency: %.2f ms\n", stats.AvgLatencyMS)

	fmt.Println("Recent activity:")
	for _, entry := range stats.Recent {
		fmt.Printf("  [%s] owner %d: %q (%.2f ms)\n",
			entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.OwnerID, entry.Query, entry.LatencyMS)
	}

	anomalies, err := a.Anomalies(ctx)
	if err != nil {
		log.Fatalf("Failed to check anomalies: %v", err)
	}
	if len(anomalies) == 0 {
		fmt.Println("No anomalous owners in the sampled window.")
		return
	}
	for ownerID, count := range anomalies {
		fmt.Printf("Anomalous owner %d: %d queries in the sampled window\n", ownerID, count)
	}
}
