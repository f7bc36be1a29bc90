package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func GenerateRoundID() string {
	return fmt.Sprintf("round_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateTransactionID() string {
	return uuid.New().String()
}

func GenerateSessionID() string {
	return uuid.New().String()
}
