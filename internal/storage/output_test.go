package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestNamespacedWorkspaces(t *testing.T) {
	root := t.TempDir()
	out, err := NewOutput(root, "/audio", true)
	if err != nil {
		t.Fatal(err)
	}

	a, err := out.NewWorkspace()
	if err != nil {
		t.Fatal(err)
	}
	b, err := out.NewWorkspace()
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID || a.Dir == b.Dir {
		t.Fatalf("workspaces collide: %+v %+v", a, b)
	}
	if a.Dir != filepath.Join(root, a.ID) {
		t.Fatalf("dir = %s", a.Dir)
	}
	if got := a.URL("combined_podcast.mp3"); got != "/audio/"+a.ID+"/combined_podcast.mp3" {
		t.Fatalf("url = %s", got)
	}
	if _, err := os.Stat(a.Dir); err != nil {
		t.Fatalf("workspace dir missing: %v", err)
	}
}

func TestFlatWorkspaceSharesRoot(t *testing.T) {
	root := t.TempDir()
	out, err := NewOutput(root, "/audio", false)
	if err != nil {
		t.Fatal(err)
	}
	ws, err := out.NewWorkspace()
	if err != nil {
		t.Fatal(err)
	}
	if ws.Dir != root || ws.URL("x.mp3") != "/audio/x.mp3" {
		t.Fatalf("workspace = %+v", ws)
	}
}

func TestWorkspaceFileOps(t *testing.T) {
	ws := &Workspace{Dir: t.TempDir(), URLPrefix: "/audio"}
	if err := ws.WriteFile("a.mp3", []byte("abc")); err != nil {
		t.Fatal(err)
	}
	data, err := ws.ReadFile("a.mp3")
	if err != nil || string(data) != "abc" {
		t.Fatalf("read = %q, %v", data, err)
	}
	if err := ws.Remove("a.mp3"); err != nil {
		t.Fatal(err)
	}
	if err := ws.Remove("a.mp3"); err != nil {
		t.Fatalf("removing a missing file should be a no-op: %v", err)
	}
}

func TestWorkspaceRejectsEscapingNames(t *testing.T) {
	root := t.TempDir()
	ws := &Workspace{Dir: filepath.Join(root, "ws"), URLPrefix: "/audio"}
	if err := os.MkdirAll(ws.Dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"../escape.mp3", "x/../../escape.mp3", "sub/a.mp3", "..", ""} {
		if err := ws.WriteFile(name, []byte("x")); err == nil {
			t.Errorf("WriteFile(%q) should fail", name)
		}
		if f, err := ws.Create(name); err == nil {
			f.Close()
			t.Errorf("Create(%q) should fail", name)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "escape.mp3")); !os.IsNotExist(err) {
		t.Fatalf("file written outside workspace: %v", err)
	}
}

func TestKey(t *testing.T) {
	if got := Key("01ABC", "combined_podcast.mp3"); got != "podcasts/01ABC/combined_podcast.mp3" {
		t.Fatalf("key = %s", got)
	}
}

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func TestS3MirrorUpload(t *testing.T) {
	local := filepath.Join(t.TempDir(), "combined_podcast.mp3")
	if err := os.WriteFile(local, []byte("mp3"), 0o644); err != nil {
		t.Fatal(err)
	}

	fake := &fakeS3{}
	m := NewS3Mirror(fake, "bucket", "https://cdn.example.com/")
	key := Key("01JREQ", "combined_podcast.mp3")
	url, err := m.Upload(context.Background(), key, local)
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://cdn.example.com/podcasts/01JREQ/combined_podcast.mp3" {
		t.Fatalf("url = %s", url)
	}
	if *fake.in.Bucket != "bucket" || *fake.in.ContentType != "audio/mpeg" || string(fake.body) != "mp3" {
		t.Fatalf("put = %+v", fake.in)
	}

	m = NewS3Mirror(fake, "bucket", "")
	if url, _ := m.Upload(context.Background(), key, local); url != "s3://bucket/"+key {
		t.Fatalf("url without cdn = %s", url)
	}
}
