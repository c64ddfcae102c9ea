// Command example is sample code, not part of the evaluator core. It loads
// an API key from a .env file and drives a single CheckGate/GetExperiment
// call against a running client.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	statsig "github.com/statsig-io/go-sdk-core"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, reading from process environment: %s", err)
	}

	apiKey := os.Getenv("STATSIG_API_KEY")
	if apiKey == "" {
		log.Fatal("STATSIG_API_KEY is required")
	}

	client, err := statsig.NewClient(apiKey)
	if err != nil {
		log.Fatalf("failed to initialize statsig client: %s", err)
	}
	defer client.Shutdown()

	user := statsig.User{UserID: "example-user"}

	ctx := context.Background()
	pass, err := client.CheckGate(ctx, user, "example_gate")
	if err != nil {
		log.Fatalf("check_gate failed: %s", err)
	}
	log.Printf("example_gate => %v", pass)

	experiment, err := client.GetExperiment(ctx, user, "example_experiment")
	if err != nil {
		log.Fatalf("get_experiment failed: %s", err)
	}
	log.Printf("example_experiment group => %s", experiment.Group)
}
