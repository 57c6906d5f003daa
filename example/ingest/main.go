package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/firstservice/askbank"
	"github.com/firstservice/askbank/core/pipeline"
	"github.com/firstservice/askbank/helper"
)

// Rebuilds the vector store from a CSV batch file. This is a full, lossy
// rebuild: run it in a maintenance window, never against live answer
// traffic.
func main() {
	path := "records.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		log.Fatalf("Failed to read database configuration: %v", err)
	}

	a, err := askbank.NewAskBank(dbConfig, pipeline.OllamaDefaultDim)
	if err != nil {
		log.Fatalf("Failed to create askbank: %v", err)
	}
	defer a.Close()

	a.UseOllama(pipeline.OllamaConfig{})

	report, err := a.IngestCSV(context.Background(), path)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	fmt.Printf("Ingestion finished: %d inserted, %d skipped, aborted=%v\n",
		report.Inserted, report.Skipped, report.Aborted)
}
