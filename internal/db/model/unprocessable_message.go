package model

import "time"

const UnprocessableMsgCollection = "unprocessable_messages"

type UnprocessableMessageDocument struct {
	MessageBody string `bson:"message_body"`
	Receipt     string `bson:"receipt"`
	CreatedAt   int64  `bson:"created_at"`
}

func NewUnprocessableMessageDocument(messageBody, receipt string, at time.Time) *UnprocessableMessageDocument {
	return &UnprocessableMessageDocument{
		MessageBody: messageBody,
		Receipt:     receipt,
		CreatedAt:   at.Unix(),
	}
}
