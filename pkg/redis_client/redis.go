package redis_client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["FLEETTRACK_REDIS_ADDRESS"] != "" {
		address = env["FLEETTRACK_REDIS_ADDRESS"]
	}

	if env["FLEETTRACK_REDIS_PASSWORD"] != "" {
		password = env["FLEETTRACK_REDIS_PASSWORD"]
	}

	if env["FLEETTRACK_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["FLEETTRACK_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return fmt.Errorf("FLEETTRACK_REDIS_DATABASE: %w", err)
		}
	}

	return ConnectClient(redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	}))
}

// ConnectClient sets up the globals around an already built client, tests hand
// in one pointing at miniredis
func ConnectClient(client *redis.Client) error {
	Client = client

	statusCmd := Client.Ping(context.Background())
	if err := statusCmd.Err(); err != nil {
		return err
	}

	errChan := make(chan error, 10)
	go logQueueErrors(errChan)

	var err error
	QueueConnection, err = rmq.OpenConnectionWithRedisClient("fleettrack", Client, errChan)
	if err != nil {
		return err
	}

	return nil
}

func logQueueErrors(errChan <-chan error) {
	for err := range errChan {
		log.Error().Err(err).Msg("Redis queue error")
	}
}
