package store

import (
	"context"
	"fmt"
	"github.com/go-redis/redis"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"net/http"
	"time"
)

// GetClient connects to MongoDB. uri wins over host/port when set.
func GetClient(ctx context.Context, uri, host, port string, httpClient *http.Client) (*mongo.Client, error) {
	if uri == "" {
		uri = fmt.Sprintf("mongodb://%s:%s/", host, port)
	}
	optionsClient := options.Client().ApplyURI(uri)
	if httpClient != nil {
		optionsClient.SetHTTPClient(httpClient)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, optionsClient)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}

func GetRedisClient(host, port string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port),
	})
}
