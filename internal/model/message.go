package model

import "time"

// ChatMessage is a class chat message. Messages are never edited.
type ChatMessage struct {
	ID         string    `json:"id"`
	ClassID    string    `json:"class_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	SenderRole Role      `json:"sender_role"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// SendMessageRequest is the body of POST /api/messages/send.
type SendMessageRequest struct {
	ClassID    string `json:"class_id" binding:"required,max=64"`
	SenderID   string `json:"sender_id" binding:"required,max=64"`
	SenderName string `json:"sender_name" binding:"required,max=100"`
	SenderRole Role   `json:"sender_role" binding:"required,oneof=student teacher parent"`
	Message    string `json:"message" binding:"required,max=4000"`
}
