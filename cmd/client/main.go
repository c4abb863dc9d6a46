package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/meadori/dualscreen/script"
	"github.com/meadori/dualscreen/server"
)

func main() {
	scriptFile := flag.String("script", "", "Path to the recorded pointer script to replay")
	addr := flag.String("addr", "localhost:50051", "Workspace service address")
	delay := flag.Duration("delay", 2*time.Second, "Wait before starting the replay")
	flag.Parse()

	if *scriptFile == "" {
		log.Fatalf("Please provide a script file using -script <file.script>")
	}

	file, err := os.Open(*scriptFile)
	if err != nil {
		log.Fatalf("Failed to open script file: %v", err)
	}
	steps, err := script.Read(file)
	file.Close()
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *scriptFile, err)
	}

	log.Printf("Connecting to workspace on %s...", *addr)
	client, err := server.Dial(*addr)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	stream, err := client.StreamPointer(context.Background())
	if err != nil {
		log.Fatalf("failed to open stream: %v", err)
	}

	log.Printf("Connected! Replaying %d steps of %s in %v...", len(steps), *scriptFile, *delay)
	time.Sleep(*delay)

	for _, step := range steps {
		p := server.Pointer{X: step.X, Y: step.Y, Contact: step.Contact}
		if err := stream.Send(p); err != nil {
			log.Fatalf("failed to send pointer: %v", err)
		}
		time.Sleep(step.Duration())
	}

	if err := stream.Close(); err != nil {
		log.Printf("failed to close stream: %v", err)
	}

	log.Println("Replay complete. Disconnected.")
}
