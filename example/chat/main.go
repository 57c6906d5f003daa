package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/firstservice/askbank"
	"github.com/firstservice/askbank/core/pipeline"
	"github.com/firstservice/askbank/helper"
)

// Interactive question loop for a single account owner. Every answer is
// written to the audit log before it is printed.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: chat <owner-id>")
	}
	ownerID, err := strconv.Atoi(os.Args[1])
	if err != nil {
		log.Fatalf("Invalid owner id %q: %v", os.Args[1], err)
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

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("Asking as owner %d. Empty line exits.\n", ownerID)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := scanner.Text()
		if question == "" {
			break
		}

		response, err := a.Answer(context.Background(), ownerID, question)
		if err != nil {
			fmt.Printf("Answer failed: %v\n", err)
			continue
		}
		fmt.Println(response)
	}
}
