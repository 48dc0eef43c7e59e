package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/trophyshop/internal/catalogcache"
	"github.com/dmitrijs2005/trophyshop/internal/client/client"
	"github.com/dmitrijs2005/trophyshop/internal/client/models"
	"github.com/dmitrijs2005/trophyshop/internal/logging"
)

// Image areas known to the server.
const (
	AreaProducts = "products"
	AreaGallery  = "gallery"
)

// Image is a local file to attach to a product or gallery item.
type Image struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// AdminService runs the back-office flows. Every successful mutation
// records an admin write so cached listings are reloaded.
type AdminService interface {
	Login(ctx context.Context, username, password string) error
	Logout(ctx context.Context) error
	LoggedIn() bool

	SaveCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	SaveProduct(ctx context.Context, p *models.Product, image *Image) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	SaveGalleryItem(ctx context.Context, it *models.GalleryItem, image *Image) (*models.GalleryItem, error)
	DeleteGalleryItem(ctx context.Context, id int64) error
	Reorder(ctx context.Context, resource string, ids []int64) error
}

type adminService struct {
	client client.Client
	cache  *catalogcache.Cache
	logger logging.Logger
}

func NewAdminService(c client.Client, cache *catalogcache.Cache, logger logging.Logger) AdminService {
	return &adminService{client: c, cache: cache, logger: logger.With("module", "admin_service")}
}

// NewSessionID returns a fresh upload session id. Dashes are dropped
// because the server uses them to delimit staged names.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *adminService) Login(ctx context.Context, username, password string) error {
	return s.client.Login(ctx, username, password)
}

func (s *adminService) Logout(ctx context.Context) error {
	return s.client.Logout(ctx)
}

func (s *adminService) LoggedIn() bool { return s.client.LoggedIn() }

func (s *adminService) markWrite(ctx context.Context) {
	if err := s.cache.MarkAdminWrite(ctx); err != nil {
		s.logger.Warn(ctx, "write marker not updated", "error", err)
	}
}

func (s *adminService) SaveCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	out, err := s.client.SaveCategory(ctx, c)
	if err != nil {
		return nil, err
	}
	s.markWrite(ctx)
	return out, nil
}

func (s *adminService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.client.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.markWrite(ctx)
	return nil
}

func (s *adminService) SaveProduct(ctx context.Context, p *models.Product, image *Image) (*models.Product, error) {
	if image != nil {
		release, ref, err := s.stageImage(ctx, AreaProducts, image)
		defer release()
		if err != nil {
			return nil, err
		}
		p.ImageURL = ref
	}
	out, err := s.client.SaveProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	s.markWrite(ctx)
	return out, nil
}

func (s *adminService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.client.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.markWrite(ctx)
	return nil
}

func (s *adminService) SaveGalleryItem(ctx context.Context, it *models.GalleryItem, image *Image) (*models.GalleryItem, error) {
	if image != nil {
		release, ref, err := s.stageImage(ctx, AreaGallery, image)
		defer release()
		if err != nil {
			return nil, err
		}
		it.ImageURL = ref
	}
	out, err := s.client.SaveGalleryItem(ctx, it)
	if err != nil {
		return nil, err
	}
	s.markWrite(ctx)
	return out, nil
}

func (s *adminService) DeleteGalleryItem(ctx context.Context, id int64) error {
	if err := s.client.DeleteGalleryItem(ctx, id); err != nil {
		return err
	}
	s.markWrite(ctx)
	return nil
}

func (s *adminService) Reorder(ctx context.Context, resource string, ids []int64) error {
	if err := s.client.Reorder(ctx, resource, ids); err != nil {
		return err
	}
	s.markWrite(ctx)
	return nil
}

// stageImage uploads image under a new session and promotes it. It returns
// the reference to store on the record and a release func that discards
// whatever the session still holds in temporary storage; callers must
// always call release. When promotion fails but the server offers a
// fallback, the temporary reference is returned and kept for the record.
func (s *adminService) stageImage(ctx context.Context, area string, image *Image) (release func(), ref string, err error) {
	session := NewSessionID()
	keep := false
	release = func() {
		if keep {
			return
		}
		res, err := s.client.FinalizeUpload(context.WithoutCancel(ctx), area, session, false, "")
		if err != nil {
			s.logger.Warn(ctx, "upload session not cleaned up", "session", session, "error", err)
			return
		}
		s.logger.Debug(ctx, "upload session closed", "session", session, "deleted", res.Deleted)
	}

	staged, err := s.client.UploadImage(ctx, area, session, image.Name, image.ContentType, image.Body)
	if err != nil {
		return release, "", fmt.Errorf("upload %s: %w", image.Name, err)
	}

	res, err := s.client.FinalizeUpload(ctx, area, session, true, staged.URL)
	if err != nil {
		if res != nil && res.FallbackURL != "" {
			s.logger.Warn(ctx, "image kept in temporary storage", "ref", res.FallbackURL, "error", err)
			keep = true
			return release, res.FallbackURL, nil
		}
		return release, "", fmt.Errorf("save %s: %w", image.Name, err)
	}
	return release, res.FinalURL, nil
}
