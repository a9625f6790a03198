// Package jsonfile implements domain repositories on top of flat JSON files.
package jsonfile

import (
	"context"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	pgzip "github.com/klauspost/pgzip"
	"go.uber.org/zap"

	"github.com/lymq17/Antipatrones/internal/domain/user"
)

const readBufSize = 4096

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository over a JSON array of
// {"id", "name", "tier"} objects. Files ending in .gz are gunzipped.
type UserRepository struct {
	path string
}

// NewUserRepository returns a UserRepository reading from path.
func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

// List reads all users in file order. A missing file yields an empty slice.
func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			zctx.From(ctx).Debug("Users file not found, using empty list", zap.String("path", r.path))
			return []user.User{}, nil
		}
		return nil, errors.Wrapf(err, "open %s", r.path)
	}
	defer func() { _ = f.Close() }()

	var src io.Reader = f
	if strings.HasSuffix(r.path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", r.path)
		}
		defer func() { _ = gz.Close() }()
		src = gz
	}

	users, err := decodeUsers(ctx, jx.Decode(src, readBufSize))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", r.path)
	}

	return users, nil
}

func decodeUsers(ctx context.Context, d *jx.Decoder) ([]user.User, error) {
	users := []user.User{}
	err := d.Arr(func(d *jx.Decoder) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		u, err := decodeUser(d)
		if err != nil {
			return errors.Wrapf(err, "user #%d", len(users))
		}
		users = append(users, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if d.Next() != jx.Invalid {
		return nil, errors.New("unexpected data after users array")
	}
	return users, nil
}

func decodeUser(d *jx.Decoder) (user.User, error) {
	var (
		u     user.User
		hasID bool
	)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "id":
			id, err := d.Int64()
			if err != nil {
				return errors.Wrap(err, "id")
			}
			u.ID = id
			hasID = true
		case "name":
			name, err := optStr(d)
			if err != nil {
				return errors.Wrap(err, "name")
			}
			u.Name = name
		case "tier":
			tier, err := optStr(d)
			if err != nil {
				return errors.Wrap(err, "tier")
			}
			u.Tier = user.Tier(tier)
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	if !hasID {
		return user.User{}, errors.New("missing id")
	}
	return u, nil
}

// optStr reads a string, treating null as empty.
func optStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}
