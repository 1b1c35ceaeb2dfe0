package cli

import (
	stdzip "archive/zip"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/catalog"
	"github.com/dmitrijs2005/meshmart/internal/client/archive"
	"github.com/dmitrijs2005/meshmart/internal/client/client"
	"github.com/dmitrijs2005/meshmart/internal/client/models"
	"github.com/dmitrijs2005/meshmart/internal/client/staging"
	"github.com/dmitrijs2005/meshmart/internal/client/upload"
	"github.com/dmitrijs2005/meshmart/internal/common"
	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/netx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ fakes ------------

type fakeAuthService struct {
	session  *models.Session
	loginErr error
}

func (f *fakeAuthService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.session = &models.Session{UserName: username, Role: common.RoleCustomer, ExpiresAt: time.Now().Add(time.Hour)}
	return f.session, nil
}
func (f *fakeAuthService) Register(context.Context, string, string) error { return nil }
func (f *fakeAuthService) Restore(context.Context) (*models.Session, error) {
	return f.session, nil
}
func (f *fakeAuthService) Logout(context.Context) error {
	f.session = nil
	return nil
}
func (f *fakeAuthService) Session() *models.Session   { return f.session }
func (f *fakeAuthService) Ping(context.Context) error { return nil }

// fakeGateway is an in-memory gateway that also plays object storage.
type fakeGateway struct {
	client.Client

	mu              sync.Mutex
	seq             int
	products        map[string]string
	files           map[string][]models.ProductFile
	objects         map[string][]byte
	orders          map[string][]models.DownloadFile
	failPut         map[string]bool
	createErr       error
	arrangeErr      error
	deletedFiles    []string
	deletedProducts []string
	arranged        [][]string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		products: map[string]string{},
		files:    map[string][]models.ProductFile{},
		objects:  map[string][]byte{},
		orders:   map[string][]models.DownloadFile{},
		failPut:  map[string]bool{},
	}
}

func (g *fakeGateway) CreateProduct(_ context.Context, title string) (*models.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.seq++
	id := fmt.Sprintf("p%d", g.seq)
	g.products[id] = title
	return &models.Product{ID: id, Title: title}, nil
}

func (g *fakeGateway) DeleteProduct(_ context.Context, productID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.products, productID)
	delete(g.files, productID)
	g.deletedProducts = append(g.deletedProducts, productID)
	return nil
}

func (g *fakeGateway) ListProductFiles(_ context.Context, productID string) ([]models.ProductFile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.ProductFile(nil), g.files[productID]...), nil
}

func (g *fakeGateway) DeleteProductFile(_ context.Context, productID, fileID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.files[productID][:0]
	for _, f := range g.files[productID] {
		if f.ID != fileID {
			kept = append(kept, f)
		}
	}
	g.files[productID] = kept
	g.deletedFiles = append(g.deletedFiles, fileID)
	return nil
}

func (g *fakeGateway) ArrangeProductFiles(_ context.Context, productID string, order []string, thumbnailID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.arrangeErr != nil {
		return g.arrangeErr
	}
	g.arranged = append(g.arranged, append([]string(nil), order...))

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	files := g.files[productID]
	for i := range files {
		if p, ok := pos[files[i].ID]; ok {
			files[i].DisplayOrder = p
		}
		if thumbnailID != "" {
			files[i].Thumbnail = files[i].ID == thumbnailID
		}
	}
	return nil
}

func (g *fakeGateway) RequestUploadGrants(_ context.Context, productID string, specs []models.FileSpec) ([]models.Grant, error) {
	grants := make([]models.Grant, len(specs))
	for i, s := range specs {
		grants[i] = models.Grant{
			FileName:     s.FileName,
			PresignedURL: "mem://" + productID + "/" + s.FileName,
			StorageKey:   "products/" + productID + "/" + s.FileName,
			Category:     s.Category,
		}
	}
	return grants, nil
}

func (g *fakeGateway) Put(_ context.Context, url, _ string, _ int64, _ string, _ netx.ProgressFunc) error {
	if g.failPut[path.Base(url)] {
		return errors.New("upload failed: 403 Forbidden")
	}
	return nil
}

func (g *fakeGateway) ConfirmUpload(_ context.Context, c models.Confirmation) (*models.ProductFile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	f := models.ProductFile{
		ID:           fmt.Sprintf("f%d", g.seq),
		ProductID:    c.ProductID,
		FileName:     c.FileName,
		FileSize:     c.FileSize,
		Category:     c.Category,
		DisplayOrder: c.DisplayOrder,
		StorageKey:   c.StorageKey,
	}
	g.files[c.ProductID] = append(g.files[c.ProductID], f)
	return &f, nil
}

func (g *fakeGateway) RequestDownload(_ context.Context, orderID string) ([]models.DownloadFile, error) {
	files, ok := g.orders[orderID]
	if !ok {
		return nil, client.NewAPIError(403, "order belongs to another user")
	}
	return files, nil
}

func (g *fakeGateway) Fetch(_ context.Context, url string) ([]byte, error) {
	b, ok := g.objects[url]
	if !ok {
		return nil, errors.New("download failed: 404 Not Found")
	}
	return b, nil
}

func (g *fakeGateway) fileNames(productID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var names []string
	for _, f := range g.files[productID] {
		names = append(names, f.FileName)
	}
	sort.Strings(names)
	return names
}

// ------------ helpers ------------

type testEnv struct {
	app  *App
	gw   *fakeGateway
	auth *fakeAuthService
	out  *bytes.Buffer
	dir  string
}

func newTestEnv(t *testing.T, role string) *testEnv {
	t.Helper()

	gw := newFakeGateway()
	auth := &fakeAuthService{session: &models.Session{
		UserName:  "alice",
		UserID:    "u1",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}}
	out := &bytes.Buffer{}
	dir := t.TempDir()

	uploads := upload.New(gw, gw, gw, upload.WithConcurrency(2))
	a := &App{
		log:         logging.Nop(),
		authService: auth,
		api:         gw,
		uploads:     uploads,
		publisher:   upload.NewPublisher(gw, uploads, nil),
		archives:    archive.New(gw, gw, archive.DirSink{Dir: dir}),
		previews:    staging.NewMemoryPreviews(),
		reader:      bufio.NewReader(strings.NewReader("")),
		out:         out,
	}
	t.Cleanup(a.closeProduct)

	return &testEnv{app: a, gw: gw, auth: auth, out: out, dir: dir}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

// ------------ tests ------------

func TestGetStatus(t *testing.T) {
	env := newTestEnv(t, common.RoleAdmin)
	assert.Equal(t, " (alice)", env.app.getStatus())

	env.app.setMode(context.Background(), ModeOnline)
	require.NoError(t, env.app.CreateProduct(context.Background(), "Statue"))
	require.NoError(t, env.app.AddFiles(context.Background(), []string{writeFile(t, "a.fbx", "mesh")}))
	assert.Equal(t, " (alice online product p1 +1)", env.app.getStatus())

	env.auth.session = nil
	env.app.closeProduct()
	assert.Equal(t, " (online)", env.app.getStatus())
}

func TestSave_UploadsStagedFiles(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)

	require.NoError(t, env.app.CreateProduct(ctx, "Ancient Statue"))
	require.NoError(t, env.app.AddFiles(ctx, []string{
		writeFile(t, "statue.fbx", "mesh-data"),
		writeFile(t, "cover.png", "png-data"),
		writeFile(t, "notes.exe", "x"),
		filepath.Join(t.TempDir(), "missing.obj"),
	}))

	out := env.out.String()
	assert.Contains(t, out, "staged: statue.fbx as model")
	assert.Contains(t, out, "staged: cover.png as image")
	assert.Contains(t, out, "thumbnail: cover.png")
	assert.Contains(t, out, "rejected: missing.obj")
	assert.Equal(t, catalog.Other, env.app.staging.Active()[2].Category)

	env.out.Reset()
	require.NoError(t, env.app.Validate(ctx))
	assert.Contains(t, env.out.String(), "Ready to save")

	require.NoError(t, env.app.Save(ctx))
	assert.Contains(t, env.out.String(), "3 of 3 file(s) uploaded")
	assert.Equal(t, []string{"cover.png", "notes.exe", "statue.fbx"}, env.gw.fileNames("p1"))
	assert.Empty(t, env.app.staging.Local())
	assert.False(t, env.app.staging.Transferring())
}

func TestSave_RefusesInvalidProduct(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)

	require.NoError(t, env.app.CreateProduct(ctx, "Statue"))
	require.NoError(t, env.app.AddFiles(ctx, []string{writeFile(t, "statue.fbx", "mesh")}))

	err := env.app.Save(ctx)
	require.ErrorIs(t, err, ErrInvalidProduct)
	assert.Contains(t, env.out.String(), "at least one preview image is required")
	assert.Empty(t, env.gw.fileNames("p1"))
}

func TestSave_PartialFailureThenRetry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)

	require.NoError(t, env.app.CreateProduct(ctx, "Statue"))
	require.NoError(t, env.app.AddFiles(ctx, []string{
		writeFile(t, "statue.fbx", "mesh"),
		writeFile(t, "cover.png", "png"),
	}))

	env.gw.failPut["statue.fbx"] = true
	env.out.Reset()
	require.NoError(t, env.app.Save(ctx))

	out := env.out.String()
	assert.Contains(t, out, "1 of 2 file(s) uploaded")
	assert.Contains(t, out, "failed: statue.fbx: upload failed: 403 Forbidden")
	assert.Contains(t, out, "Type 'retry'")
	require.Len(t, env.app.staging.Local(), 1)

	delete(env.gw.failPut, "statue.fbx")
	env.out.Reset()
	require.NoError(t, env.app.Retry(ctx))
	assert.Contains(t, env.out.String(), "1 of 1 file(s) uploaded")
	assert.Empty(t, env.app.staging.Local())
	assert.Equal(t, []string{"cover.png", "statue.fbx"}, env.gw.fileNames("p1"))

	require.ErrorIs(t, env.app.Retry(ctx), ErrNothingRetry)
}

func TestSave_AllFailedReportsEveryFile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)

	require.NoError(t, env.app.CreateProduct(ctx, "Statue"))
	require.NoError(t, env.app.AddFiles(ctx, []string{
		writeFile(t, "statue.fbx", "mesh"),
		writeFile(t, "cover.png", "png"),
	}))
	env.gw.failPut["statue.fbx"] = true
	env.gw.failPut["cover.png"] = true

	err := env.app.Save(ctx)
	require.ErrorIs(t, err, upload.ErrAllFailed)
	assert.Contains(t, err.Error(), "cover.png")
	assert.Contains(t, err.Error(), "statue.fbx")
	assert.Len(t, env.app.staging.Local(), 2)
}

func TestEdit_DeletesServerFilesOnSave(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)

	env.gw.files["p7"] = []models.ProductFile{
		{ID: "f-cover", FileName: "cover.png", FileSize: 10, Category: catalog.Image, DisplayOrder: 1},
		{ID: "f-old", FileName: "old.fbx", FileSize: 20, Category: catalog.Model, DisplayOrder: 0},
	}

	require.NoError(t, env.app.Edit(ctx, "p7"))
	assert.Contains(t, env.out.String(), "Product p7: 2 file(s)")

	require.NoError(t, env.app.RemoveFile(ctx, "1"))
	assert.Contains(t, env.out.String(), "Removed old.fbx (deleted from the server on save)")

	require.NoError(t, env.app.Thumb(ctx, "cover.png"))
	require.NoError(t, env.app.AddFiles(ctx, []string{writeFile(t, "new.obj", "mesh")}))

	env.out.Reset()
	require.NoError(t, env.app.Files(ctx))
	assert.Contains(t, env.out.String(), "1 file(s) will be deleted on save")
	assert.Contains(t, env.out.String(), "*  1. cover.png")

	require.NoError(t, env.app.Save(ctx))
	assert.Equal(t, []string{"f-old"}, env.gw.deletedFiles)
	assert.Equal(t, []string{"cover.png", "new.obj"}, env.gw.fileNames("p7"))
	assert.Empty(t, env.app.staging.PendingDeletions())
}

func TestEdit_SavesOrderAndThumbnail(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)

	env.gw.files["p7"] = []models.ProductFile{
		{ID: "f-model", FileName: "statue.fbx", Category: catalog.Model, DisplayOrder: 0},
		{ID: "f-cover", FileName: "cover.png", Category: catalog.Image, DisplayOrder: 1, Thumbnail: true},
		{ID: "f-side", FileName: "side.png", Category: catalog.Image, DisplayOrder: 2},
	}

	require.NoError(t, env.app.Edit(ctx, "p7"))
	assert.Equal(t, "f-cover", env.app.staging.Thumbnail())
	require.NoError(t, env.app.Validate(ctx))
	assert.Contains(t, env.out.String(), "Ready to save")

	require.NoError(t, env.app.Move(ctx, "3", "1"))
	require.NoError(t, env.app.Thumb(ctx, "side.png"))

	env.out.Reset()
	require.NoError(t, env.app.Save(ctx))
	assert.Contains(t, env.out.String(), "Saved")
	assert.Equal(t, [][]string{{"f-side", "f-model", "f-cover"}}, env.gw.arranged)

	require.NoError(t, env.app.Edit(ctx, "p7"))
	names := []string{}
	for _, f := range env.app.staging.Active() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"side.png", "statue.fbx", "cover.png"}, names)
	assert.Equal(t, "f-side", env.app.staging.Thumbnail())
}

func TestSave_ArrangementFailureIsReported(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)

	require.NoError(t, env.app.CreateProduct(ctx, "Statue"))
	require.NoError(t, env.app.AddFiles(ctx, []string{
		writeFile(t, "statue.fbx", "mesh"),
		writeFile(t, "cover.png", "png"),
	}))
	env.gw.arrangeErr = client.NewAPIError(500, "internal error")

	err := env.app.Save(ctx)
	require.Error(t, err)
	assert.Contains(t, env.out.String(), "2 of 2 file(s) uploaded")
	assert.Contains(t, env.out.String(), "Could not save file order:")
	assert.Equal(t, []string{"cover.png", "statue.fbx"}, env.gw.fileNames("p1"))
	assert.Empty(t, env.app.staging.Local())
}

func TestStagingCommands(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)

	require.ErrorIs(t, env.app.Files(ctx), ErrNoProduct)

	require.NoError(t, env.app.CreateProduct(ctx, "Statue"))
	require.NoError(t, env.app.AddFiles(ctx, []string{
		writeFile(t, "statue.fbx", "mesh"),
		writeFile(t, "wood.png", "png"),
		writeFile(t, "cover.jpg", "jpg"),
	}))

	require.NoError(t, env.app.SetCategory(ctx, "wood.png", "texture"))
	require.Error(t, env.app.SetCategory(ctx, "wood.png", "sculpture"))
	require.ErrorIs(t, env.app.SetCategory(ctx, "9", "texture"), staging.ErrIndexOutOfRange)

	require.NoError(t, env.app.Move(ctx, "3", "1"))
	names := []string{}
	for _, f := range env.app.staging.Active() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"cover.jpg", "statue.fbx", "wood.png"}, names)
	require.Error(t, env.app.Move(ctx, "x", "1"))

	require.NoError(t, env.app.Thumb(ctx, "1"))
	assert.Equal(t, env.app.staging.Active()[0].ID, env.app.staging.Thumbnail())

	require.NoError(t, env.app.RemoveFile(ctx, "cover.jpg"))
	require.ErrorIs(t, env.app.RemoveFile(ctx, "cover.jpg"), staging.ErrNotFound)

	env.out.Reset()
	require.NoError(t, env.app.Validate(ctx))
	assert.Contains(t, env.out.String(), "at least one preview image is required")
}

func TestAdminCommandsRequireAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleCustomer)

	require.ErrorIs(t, env.app.CreateProduct(ctx, "X"), ErrNotAdmin)
	require.ErrorIs(t, env.app.Edit(ctx, "p1"), ErrNotAdmin)
	require.ErrorIs(t, env.app.Save(ctx), ErrNotAdmin)
	require.ErrorIs(t, env.app.Publish(ctx, "X", nil), ErrNotAdmin)
	assert.Contains(t, env.out.String(), ErrNotAdmin.Error())
	assert.Empty(t, env.gw.products)
}

func TestRejectedTokenLogsOut(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)
	env.gw.createErr = client.NewAPIError(401, "token expired")

	err := env.app.CreateProduct(ctx, "Statue")
	require.Error(t, err)
	assert.Nil(t, env.auth.session)
	assert.Contains(t, env.out.String(), "please log in again")
}

func TestPublish_Success(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)

	err := env.app.Publish(ctx, "Statue", []string{
		writeFile(t, "statue.fbx", "mesh"),
		writeFile(t, "cover.png", "png"),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"p1": "Statue"}, env.gw.products)
	assert.Equal(t, []string{"cover.png", "statue.fbx"}, env.gw.fileNames("p1"))
	require.NotNil(t, env.app.staging)
	assert.Equal(t, "p1", env.app.staging.ProductID())
	assert.Len(t, env.app.staging.Active(), 2)
	assert.Contains(t, env.out.String(), `Product "Statue" published with id p1`)
}

func TestPublish_NothingUploadedRemovesProduct(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)
	env.gw.failPut["statue.fbx"] = true
	env.gw.failPut["cover.png"] = true

	err := env.app.Publish(ctx, "Statue", []string{
		writeFile(t, "statue.fbx", "mesh"),
		writeFile(t, "cover.png", "png"),
	})
	require.ErrorIs(t, err, upload.ErrAllFailed)
	assert.Empty(t, env.gw.products)
	assert.Equal(t, []string{"p1"}, env.gw.deletedProducts)
	assert.Nil(t, env.app.staging)
}

func TestPublish_InvalidDoesNotCreate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleAdmin)

	err := env.app.Publish(ctx, "Statue", []string{writeFile(t, "statue.fbx", "mesh")})
	require.ErrorIs(t, err, ErrInvalidProduct)
	assert.Empty(t, env.gw.products)
}

func TestDownload_SavesArchiveWithSummary(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleCustomer)

	env.gw.orders["o1"] = []models.DownloadFile{
		{FileName: "statue.fbx", Category: catalog.Model, PresignedURL: "mem://o1/statue.fbx", SizeLabel: "6 B"},
		{FileName: "cover.png", Category: catalog.Image, PresignedURL: "mem://o1/cover.png", SizeLabel: "6 B"},
		{FileName: "gone.tga", Category: catalog.Texture, PresignedURL: "mem://o1/gone.tga", SizeLabel: "6 B"},
	}
	env.gw.objects["mem://o1/statue.fbx"] = []byte("model!")
	env.gw.objects["mem://o1/cover.png"] = []byte("image!")

	require.NoError(t, env.app.Download(ctx, "o1", "My Order"))

	out := env.out.String()
	assert.Contains(t, out, "fetching 3 file(s)")
	assert.Contains(t, out, "compressing archive")
	assert.Contains(t, out, "2 of 3 files included")
	assert.Contains(t, out, "failed: gone.tga: download failed: 404 Not Found")
	assert.Contains(t, out, "Saved to")

	zr, err := stdzip.OpenReader(filepath.Join(env.dir, "My_Order_assets.zip"))
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"models/statue.fbx", "cover.png"}, names)
}

func TestDownload_ForbiddenOrder(t *testing.T) {
	env := newTestEnv(t, common.RoleCustomer)

	err := env.app.Download(context.Background(), "someone-elses", "")
	require.ErrorIs(t, err, client.ErrForbidden)
	assert.Contains(t, env.out.String(), "belongs to another account")
}

func TestDownload_NothingFetched(t *testing.T) {
	env := newTestEnv(t, common.RoleCustomer)
	env.gw.orders["o2"] = []models.DownloadFile{
		{FileName: "a.fbx", Category: catalog.Model, PresignedURL: "mem://o2/a.fbx"},
	}

	err := env.app.Download(context.Background(), "o2", "")
	require.ErrorIs(t, err, archive.ErrNothingDownloaded)
	assert.Contains(t, env.out.String(), "None of the order files could be downloaded")

	entries, err := os.ReadDir(env.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoginAndLogout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleCustomer)
	env.auth.session = nil

	origText, origPw := getSimpleText, getPassword
	t.Cleanup(func() { getSimpleText, getPassword = origText, origPw })
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return "bob", nil }
	getPassword = func(io.Writer) (string, error) { return "pw", nil }

	require.NoError(t, env.app.Login(ctx))
	assert.True(t, env.app.isLoggedIn())
	assert.Equal(t, ModeOnline, env.app.Mode())
	assert.Contains(t, env.out.String(), "Logged in as bob (customer)")

	require.NoError(t, env.app.WhoAmI(ctx))
	assert.Contains(t, env.out.String(), "bob (role customer")

	require.NoError(t, env.app.Logout(ctx))
	assert.False(t, env.app.isLoggedIn())

	env.auth.loginErr = fmt.Errorf("login error: %w", client.ErrUnavailable)
	require.Error(t, env.app.Login(ctx))
	assert.Equal(t, ModeOffline, env.app.Mode())
}

func TestRestore_WelcomesBack(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, common.RoleCustomer)

	env.app.Restore(ctx)
	assert.Equal(t, "Welcome back, alice\n", env.out.String())

	env.out.Reset()
	env.auth.session.SignedInAt = time.Now().Add(-3 * time.Hour)
	env.app.Restore(ctx)
	assert.Equal(t, "Welcome back, alice (signed in 3 hours ago)\n", env.out.String())
}
