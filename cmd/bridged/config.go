package main

type Config struct {
	BadgerFilepath    string `env:"BADGER_FILEPATH,required=true" validate:"required"`
	LogLevel          string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	ShortIDLength     int    `env:"SHORT_ID_LENGTH,default=8" validate:"gte=2,lte=64"`
	MaxFriendRequests int    `env:"MAX_FRIEND_REQUESTS,default=128" validate:"gt=0"`
	MaxGroupInvites   int    `env:"MAX_GROUP_INVITES,default=64" validate:"gt=0"`
	QueueLimit        int    `env:"QUEUE_LIMIT,default=0" validate:"gte=0"`
}
