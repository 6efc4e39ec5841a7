package roles

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/rolekeeper/internal/common"
)

// DefaultCollection is the Firestore collection holding role records.
const DefaultCollection = "users"

// FirestoreRepository stores one document per user in a collection.
// Setting FIRESTORE_EMULATOR_HOST points the client at the emulator.
type FirestoreRepository struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreRepository(client *firestore.Client, collection string) *FirestoreRepository {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreRepository{client: client, collection: collection}
}

// OpenFirestore initialises a Firebase app for projectID and returns a
// repository over its Firestore database. credentialsFile may be empty to use
// application default credentials.
func OpenFirestore(ctx context.Context, projectID, credentialsFile, collection string) (*FirestoreRepository, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app init error: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client init error: %w", err)
	}
	return NewFirestoreRepository(client, collection), nil
}

func (r *FirestoreRepository) doc(id string) *firestore.DocumentRef {
	return r.client.Collection(r.collection).Doc(id)
}

func (r *FirestoreRepository) Get(ctx context.Context, id string) (*Record, error) {
	snap, err := r.doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("firestore get %s/%s: %w", r.collection, id, err)
	}

	rec := &Record{}
	if err := snap.DataTo(rec); err != nil {
		return nil, fmt.Errorf("firestore decode %s/%s: %w", r.collection, id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	return rec, nil
}

func (r *FirestoreRepository) Create(ctx context.Context, rec *Record) (bool, error) {
	if _, err := r.doc(rec.ID).Create(ctx, rec); err != nil {
		if isAlreadyExists(err) {
			return false, nil
		}
		return false, fmt.Errorf("firestore create %s/%s: %w", r.collection, rec.ID, err)
	}
	return true, nil
}

func (r *FirestoreRepository) Set(ctx context.Context, rec *Record) error {
	data := map[string]any{
		"id":        rec.ID,
		"email":     rec.Email,
		"role":      rec.Role,
		"updatedAt": firestore.ServerTimestamp,
	}
	if _, err := r.doc(rec.ID).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("firestore set %s/%s: %w", r.collection, rec.ID, err)
	}
	return nil
}

func (r *FirestoreRepository) Close() error {
	return r.client.Close()
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
