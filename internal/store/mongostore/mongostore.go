package mongostore

import (
	"context"
	"fmt"
	"roomrelay/internal/chat"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type messageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SocketID  string             `bson:"socketId"`
	Username  string             `bson:"username"`
	Text      string             `bson:"text"`
	Room      string             `bson:"room"`
	Timestamp time.Time          `bson:"timestamp"`
}

// Store keeps one document per message in a Mongo collection.
type Store struct {
	coll *mongo.Collection
}

var (
	_ chat.MessageStore  = (*Store)(nil)
	_ chat.HistoryReader = (*Store)(nil)
	_ chat.Pinger        = (*Store)(nil)
)

func New(coll *mongo.Collection) *Store { return &Store{coll: coll} }

// EnsureIndexes creates the {room, timestamp} index used by History.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "room", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, msg chat.Message) error {
	_, err := s.coll.InsertOne(ctx, messageDoc{
		SocketID:  string(msg.ConnectionID),
		Username:  msg.Username,
		Text:      msg.Text,
		Room:      msg.Room,
		Timestamp: msg.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// History returns up to limit of the latest messages of a room, oldest first.
func (s *Store) History(ctx context.Context, room string, limit int) ([]chat.Message, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, bson.M{"room": room}, opts)
	if err != nil {
		return nil, err
	}
	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	list := make([]chat.Message, 0, len(docs))
	for _, d := range docs {
		list = append(list, chat.Message{
			ConnectionID: chat.ConnID(d.SocketID),
			Username:     d.Username,
			Text:         d.Text,
			Room:         d.Room,
			Timestamp:    d.Timestamp.UTC(),
		})
	}
	slices.Reverse(list)
	return list, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, readpref.Primary())
}
