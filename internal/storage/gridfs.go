package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps files in a MongoDB GridFS bucket.
type GridFSStore struct {
	bucket *gridfs.Bucket
	files  *mongo.Collection
}

// gridFile mirrors a document of the bucket's files collection.
type gridFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Filename   string             `bson:"filename"`
	Metadata   fileMetadata       `bson:"metadata"`
}

func (g gridFile) toModel() *model.File {
	return &model.File{
		ID:           g.ID.Hex(),
		Filename:     g.Filename,
		OriginalName: g.Metadata.OriginalName,
		ContentType:  g.Metadata.ContentType,
		Size:         g.Length,
		UploadedBy:   g.Metadata.uploader(),
		UploadDate:   g.UploadDate,
	}
}

// NewGridFSStore opens the named bucket in db.
func NewGridFSStore(db *mongo.Database, bucketName string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSStore{
		bucket: bucket,
		files:  db.Collection(bucketName + ".files"),
	}, nil
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// Put streams r into the bucket.
func (s *GridFSStore) Put(ctx context.Context, in PutInput, r io.Reader) (*model.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	meta := fileMetadata{
		OriginalName: in.OriginalName,
		UploadedBy:   in.UploadedBy.String(),
		UploadDate:   time.Now().UTC(),
		ContentType:  in.ContentType,
	}

	cr := &countingReader{r: r}
	oid, err := s.bucket.UploadFromStream(in.Filename, cr, options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		return nil, fmt.Errorf("gridfs upload: %w", err)
	}

	return &model.File{
		ID:           oid.Hex(),
		Filename:     in.Filename,
		OriginalName: in.OriginalName,
		ContentType:  in.ContentType,
		Size:         cr.n,
		UploadedBy:   in.UploadedBy,
		UploadDate:   meta.UploadDate,
	}, nil
}

// Open returns the file's metadata and a reader over its content.
func (s *GridFSStore) Open(ctx context.Context, id string) (*model.File, io.ReadCloser, error) {
	f, err := s.Stat(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	oid, _ := parseObjectID(id)

	stream, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("gridfs open: %w", err)
	}
	return f, stream, nil
}

// Stat returns the file's metadata.
func (s *GridFSStore) Stat(ctx context.Context, id string) (*model.File, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc gridFile
	if err := s.files.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("gridfs stat: %w", err)
	}
	return doc.toModel(), nil
}

// Delete removes the file and its chunks.
func (s *GridFSStore) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.bucket.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("gridfs delete: %w", err)
	}
	return nil
}

// List returns a page of files, newest first.
func (s *GridFSStore) List(ctx context.Context, f model.FileFilter) ([]model.File, int, error) {
	filter := bson.M{}
	if f.UploadedBy != "" {
		filter["metadata.uploadedBy"] = f.UploadedBy
	}
	if f.ContentType != "" {
		filter["metadata.contentType"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.ContentType), Options: "i"}
	}

	total, err := s.files.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("gridfs count: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "uploadDate", Value: -1}}).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.Limit()))

	cur, err := s.files.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("gridfs find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []gridFile
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("gridfs decode: %w", err)
	}

	files := make([]model.File, 0, len(docs))
	for _, d := range docs {
		files = append(files, *d.toModel())
	}
	return files, int(total), nil
}
