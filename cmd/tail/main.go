// Command tail follows a conversation's live event stream and prints each
// message to stdout. Useful for debugging fan-out without a web client.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"

	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/realtime"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: tail <hub-url> <conversation-id>")
		os.Exit(1)
	}
	hubURL := os.Args[1]
	conversationID := os.Args[2]

	topics := []string{realtime.ConversationTopic(conversationID)}
	sub := realtime.NewSubscription(hubURL, topics, printEvent)
	if token := os.Getenv("CHAT_TOKEN"); token != "" {
		sub.SetAuthToken(token)
	}
	sub.Open()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	<-interrupt

	log.Println("Shutting down...")
	sub.Close()
}

func printEvent(update realtime.Update) {
	var event models.MessageEvent
	if err := json.Unmarshal([]byte(update.Data), &event); err != nil {
		fmt.Printf("[%s] %s\n", update.Topic, update.Data)
		return
	}
	fmt.Printf("[%s] %s: %s\n", event.SentAt, event.SenderName, event.Content)
}
