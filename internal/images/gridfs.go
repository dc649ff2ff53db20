package images

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Jeomhps/formation-admin/internal/apperr"
)

// GridFS keeps images in a MongoDB GridFS bucket. Bucket deadlines are
// bucket state, so each call works on its own *gridfs.Bucket.
type GridFS struct {
	db   *mongo.Database
	name string
}

// Connect dials MongoDB and returns the client with a bucket-backed store.
// The caller owns the client and must Disconnect it.
func Connect(ctx context.Context, uri, database, bucket string) (*mongo.Client, *GridFS, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, errors.Wrap(err, "mongo connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(err, "mongo ping")
	}
	store, err := NewGridFS(client.Database(database), bucket)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}
	return client, store, nil
}

func NewGridFS(db *mongo.Database, name string) (*GridFS, error) {
	g := &GridFS{db: db, name: name}
	if _, err := g.bucket(context.Background()); err != nil {
		return nil, err
	}
	return g, nil
}

// bucket returns a fresh handle carrying ctx's deadline, if any.
func (g *GridFS) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(g.db, options.GridFSBucket().SetName(g.name))
	if err != nil {
		return nil, errors.Wrap(err, "gridfs bucket")
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(dl); err != nil {
			return nil, errors.Wrap(err, "gridfs deadline")
		}
		if err := b.SetWriteDeadline(dl); err != nil {
			return nil, errors.Wrap(err, "gridfs deadline")
		}
	}
	return b, nil
}

func (g *GridFS) Put(ctx context.Context, filename, contentType string, r io.Reader) (Object, error) {
	b, err := g.bucket(ctx)
	if err != nil {
		return Object{}, apperr.Internal(err, "store image")
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	id, err := b.UploadFromStream(filename, r, opts)
	if err != nil {
		return Object{}, apperr.Internal(err, "store image")
	}
	return Object{ID: id.Hex(), Filename: filename, ContentType: contentType, UploadedAt: time.Now().UTC()}, nil
}

func (g *GridFS) Open(ctx context.Context, id string) (io.ReadCloser, Object, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, Object{}, apperr.NotFound("Image not found")
	}
	b, err := g.bucket(ctx)
	if err != nil {
		return nil, Object{}, apperr.Internal(err, "open image")
	}
	ds, err := b.OpenDownloadStream(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, Object{}, apperr.NotFound("Image not found")
	}
	if err != nil {
		return nil, Object{}, apperr.Internal(err, "open image")
	}
	return ds, objectFromFile(ds.GetFile()), nil
}

func (g *GridFS) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.NotFound("Image not found")
	}
	b, err := g.bucket(ctx)
	if err != nil {
		return apperr.Internal(err, "delete image")
	}
	err = b.DeleteContext(ctx, oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return apperr.NotFound("Image not found")
	}
	if err != nil {
		return apperr.Internal(err, "delete image")
	}
	return nil
}

func (g *GridFS) List(ctx context.Context) ([]Object, error) {
	b, err := g.bucket(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "list images")
	}
	cur, err := b.FindContext(ctx, bson.D{})
	if err != nil {
		return nil, apperr.Internal(err, "list images")
	}
	defer cur.Close(ctx)

	var files []gridfs.File
	if err := cur.All(ctx, &files); err != nil {
		return nil, apperr.Internal(err, "list images")
	}
	out := make([]Object, 0, len(files))
	for i := range files {
		out = append(out, objectFromFile(&files[i]))
	}
	return out, nil
}

func objectFromFile(f *gridfs.File) Object {
	o := Object{Filename: f.Name, Size: f.Length, UploadedAt: f.UploadDate}
	if oid, ok := f.ID.(primitive.ObjectID); ok {
		o.ID = oid.Hex()
	}
	if len(f.Metadata) > 0 {
		if ct, ok := f.Metadata.Lookup("contentType").StringValueOK(); ok {
			o.ContentType = ct
		}
	}
	return o
}
