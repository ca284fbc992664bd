// Package gridfs stores item photos in a MongoDB GridFS bucket.
package gridfs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/and161185/stockkeeper/internal/errs"
)

// BucketName is the GridFS bucket holding every blob.
const BucketName = "blobs"

// Store implements blob.Store. The GridFS file name is the blob path.
type Store struct {
	client *mongo.Client
	bucket *gridfs.Bucket
	log    *zap.Logger
}

// Connect dials MongoDB, pings it and opens the bucket in dbName.
func Connect(ctx context.Context, uri, dbName string, log *zap.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	bucket, err := gridfs.NewBucket(client.Database(dbName), options.GridFSBucket().SetName(BucketName))
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{client: client, bucket: bucket, log: log}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type fileRef struct {
	ID       any      `bson:"_id"`
	Metadata bson.Raw `bson:"metadata"`
}

func (s *Store) find(ctx context.Context, p string, limit int64) ([]fileRef, error) {
	opts := options.GridFSFind().SetSort(bson.D{{Key: "uploadDate", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int32(limit))
	}
	cur, err := s.bucket.FindContext(ctx, bson.D{{Key: "filename", Value: p}}, opts)
	if err != nil {
		return nil, err
	}
	var out []fileRef
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Put uploads a new revision and then drops the older ones.
func (s *Store) Put(ctx context.Context, p string, r io.Reader, contentType string) error {
	meta := bson.D{{Key: "contentType", Value: contentType}}
	id, err := s.bucket.UploadFromStream(p, r, options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		return fmt.Errorf("upload %s: %w", p, err)
	}
	old, err := s.find(ctx, p, 0)
	if err != nil {
		s.log.Warn("list previous revisions", zap.String("path", p), zap.Error(err))
		return nil
	}
	for _, f := range old {
		if f.ID == id {
			continue
		}
		if err := s.bucket.DeleteContext(ctx, f.ID); err != nil {
			s.log.Warn("drop previous revision", zap.String("path", p), zap.Error(err))
		}
	}
	return nil
}

// Open streams the newest revision stored under p.
func (s *Store) Open(ctx context.Context, p string) (io.ReadCloser, string, error) {
	files, err := s.find(ctx, p, 1)
	if err != nil {
		return nil, "", err
	}
	if len(files) == 0 {
		return nil, "", errs.ErrNotFound
	}
	f := files[0]
	ds, err := s.bucket.OpenDownloadStream(f.ID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, "", errs.ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	ct := "application/octet-stream"
	if len(f.Metadata) > 0 {
		if v, ok := f.Metadata.Lookup("contentType").StringValueOK(); ok && v != "" {
			ct = v
		}
	}
	return ds, ct, nil
}

// Delete removes every revision under p.
func (s *Store) Delete(ctx context.Context, p string) error {
	files, err := s.find(ctx, p, 0)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errs.ErrNotFound
	}
	for _, f := range files {
		if err := s.bucket.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("delete %s: %w", p, err)
		}
	}
	return nil
}
