package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tourbook/internal/repositories/interfaces"
	"tourbook/internal/utils"
	"tourbook/pkg/storage"
)

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, utils.NewBadRequestError(utils.ErrMsgInvalidID)
	}
	return oid, nil
}

// notFoundAs replaces a repository ErrNotFound with a 404 carrying msg.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return utils.NewNotFoundError(msg)
	}
	return err
}

// storeImage resizes r to a width x height JPEG and uploads it under key.
func storeImage(ctx context.Context, provider storage.StorageProvider, key string, r io.Reader, width, height uint) (string, error) {
	data, err := utils.ResizeToJPEG(r, width, height)
	if err != nil {
		if errors.Is(err, utils.ErrUnsupportedImage) {
			return "", utils.NewBadRequestError("Not an image! Please upload only images.")
		}
		return "", fmt.Errorf("failed to process image: %w", err)
	}

	resp, err := provider.Upload(ctx, &storage.UploadRequest{
		Key:          key,
		Reader:       bytes.NewReader(data),
		ContentType:  "image/jpeg",
		Size:         int64(len(data)),
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return resp.Key, nil
}
