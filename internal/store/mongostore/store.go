// Package mongostore stores entries and users in MongoDB, one document per user and day.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"moodlog/internal/core"
	"moodlog/internal/store"
)

const (
	entriesCollection = "moodlogs"
	usersCollection   = "users"
)

// Store wraps MongoDB operations
type Store struct {
	client  *mongo.Client
	entries *mongo.Collection
	users   *mongo.Collection
}

var (
	_ store.EntryWriter = (*Store)(nil)
	_ store.EntryLister = (*Store)(nil)
	_ store.UserStore   = (*Store)(nil)
	_ store.Pinger      = (*Store)(nil)
)

type moodLogDoc struct {
	ID         string    `bson:"_id"`
	UserID     string    `bson:"userId"`
	Day        string    `bson:"day"`
	Date       time.Time `bson:"date"`
	Mood       int       `bson:"mood"`
	Notes      string    `bson:"notes,omitempty"`
	Sleep      string    `bson:"sleep,omitempty"`
	SleepHours float64   `bson:"sleepHours,omitempty"`
	Tags       []string  `bson:"tags,omitempty"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

type userDoc struct {
	ID           string     `bson:"_id"`
	Email        string     `bson:"email"`
	PasswordHash string     `bson:"passwordHash"`
	DisplayName  string     `bson:"displayName"`
	PhotoURL     string     `bson:"photoURL,omitempty"`
	CreatedAt    time.Time  `bson:"createdAt"`
	LastLoginAt  *time.Time `bson:"lastLoginAt,omitempty"`
}

// New connects to MongoDB and makes sure the indexes exist.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:  client,
		entries: db.Collection(entriesCollection),
		users:   db.Collection(usersCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	slog.InfoContext(ctx, "Connected to MongoDB", "database", dbName)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.entries.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create moodlogs index: %w", err)
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// UpsertEntry replaces the user's document for the entry's day, creating it if needed.
func (s *Store) UpsertEntry(ctx context.Context, userID string, e core.MoodEntry) (core.MoodEntry, error) {
	if err := e.Validate(); err != nil {
		return core.MoodEntry{}, err
	}
	doc := toDoc(userID, e, time.Now().UTC())
	opts := options.Replace().SetUpsert(true)
	if _, err := s.entries.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return core.MoodEntry{}, fmt.Errorf("upsert mood log %s: %w", doc.ID, err)
	}
	return fromDoc(doc), nil
}

// ListEntries returns the user's entries from since's day on, newest first.
func (s *Store) ListEntries(ctx context.Context, userID string, since time.Time) ([]core.MoodEntry, error) {
	filter := bson.M{"userId": userID}
	if !since.IsZero() {
		filter["day"] = bson.M{"$gte": core.DayKey(since)}
	}
	opts := options.Find().SetSort(bson.D{{Key: "day", Value: -1}})

	cursor, err := s.entries.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find mood logs: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.MoodEntry
	for cursor.Next(ctx) {
		var doc moodLogDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode mood log: %w", err)
		}
		out = append(out, fromDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood logs: %w", err)
	}
	return out, nil
}

func (s *Store) CreateUser(ctx context.Context, u core.User, passwordHash string) (core.User, error) {
	doc := userDoc{
		ID:           u.ID,
		Email:        normalizeEmail(u.Email),
		PasswordHash: passwordHash,
		DisplayName:  u.DisplayName,
		PhotoURL:     u.PhotoURL,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return core.User{}, store.ErrConflict
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return doc.toCore(), nil
}

func (s *Store) GetUser(ctx context.Context, id string) (core.User, error) {
	doc, err := s.findUser(ctx, bson.M{"_id": id})
	if err != nil {
		return core.User{}, err
	}
	return doc.toCore(), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (core.User, string, error) {
	doc, err := s.findUser(ctx, bson.M{"email": normalizeEmail(email)})
	if err != nil {
		return core.User{}, "", err
	}
	return doc.toCore(), doc.PasswordHash, nil
}

func (s *Store) UpdateUser(ctx context.Context, u core.User) (core.User, error) {
	update := bson.M{"$set": bson.M{
		"email":       normalizeEmail(u.Email),
		"displayName": u.DisplayName,
		"photoURL":    u.PhotoURL,
	}}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": u.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return core.User{}, store.ErrConflict
		}
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.User{}, store.ErrNotFound
	}
	return s.GetUser(ctx, u.ID)
}

func (s *Store) TouchLogin(ctx context.Context, id string, at time.Time) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLoginAt": at.UTC()}})
	if err != nil {
		return fmt.Errorf("touch user login: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (userDoc, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return userDoc{}, store.ErrNotFound
		}
		return userDoc{}, fmt.Errorf("find user: %w", err)
	}
	return doc, nil
}

func toDoc(userID string, e core.MoodEntry, now time.Time) moodLogDoc {
	day := e.Date.Key()
	doc := moodLogDoc{
		ID:        userID + ":" + day,
		UserID:    userID,
		Day:       day,
		Date:      core.StartOfDay(e.Date.Time).UTC(),
		Mood:      e.Mood.Weight(),
		Notes:     e.Journal,
		UpdatedAt: now,
	}
	if e.HasSleep() {
		doc.Sleep = string(e.Sleep)
		doc.SleepHours = e.Sleep.Hours()
	}
	for _, t := range e.Tags {
		doc.Tags = append(doc.Tags, string(t))
	}
	return doc
}

// fromDoc reads the day key rather than the timestamp so entries stay on
// the day they were logged for whatever zone wrote them.
func fromDoc(doc moodLogDoc) core.MoodEntry {
	date, err := core.ParseDay(doc.Day)
	if err != nil {
		date = core.Date{Time: doc.Date}
	}
	mood, ok := core.MoodFromWeight(doc.Mood)
	if !ok {
		mood = core.Neutral
	}
	e := core.MoodEntry{
		Date:    date,
		Mood:    mood,
		Sleep:   core.SleepBucket(doc.Sleep),
		Journal: doc.Notes,
	}
	for _, t := range doc.Tags {
		e.Tags = append(e.Tags, core.Tag(t))
	}
	return e
}

func (d userDoc) toCore() core.User {
	u := core.User{
		ID:          d.ID,
		Email:       d.Email,
		DisplayName: d.DisplayName,
		PhotoURL:    d.PhotoURL,
		CreatedAt:   d.CreatedAt,
	}
	if d.LastLoginAt != nil {
		u.LastLoginAt = *d.LastLoginAt
	}
	return u
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
