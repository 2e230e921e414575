package uri

import "testing"

func TestParseSchemes(t *testing.T) {
	cases := []struct {
		raw    string
		scheme Scheme
		isS3   bool
	}{
		{"file:///tmp/x", SchemeFile, false},
		{"hdfs://namenode:8020/data/x", SchemeHDFS, false},
		{"s3://bucket/a/b", SchemeS3, true},
		{"ftp://host/x", SchemeUnknown, false},
		{"not-a-uri", SchemeUnknown, false},
	}

	for _, c := range cases {
		u := Parse(c.raw)
		if u.Scheme() != c.scheme {
			t.Errorf("Parse(%q).Scheme() = %v, want %v", c.raw, u.Scheme(), c.scheme)
		}
		if u.IsS3() != c.isS3 {
			t.Errorf("Parse(%q).IsS3() = %v, want %v", c.raw, u.IsS3(), c.isS3)
		}
	}
}

func TestToPath(t *testing.T) {
	u := Parse("file:///tmp/x")
	if u.ToPath() != "/tmp/x" {
		t.Errorf("ToPath() = %q, want /tmp/x", u.ToPath())
	}
}

func TestBucketAndKey(t *testing.T) {
	u := Parse("s3://bucket/a/b")
	if u.Bucket() != "bucket" {
		t.Errorf("Bucket() = %q, want bucket", u.Bucket())
	}
	if u.Key() != "a/b" {
		t.Errorf("Key() = %q, want a/b", u.Key())
	}
}

func TestJoin(t *testing.T) {
	parent := Parse("s3://bucket/a")
	child := parent.Join("k")
	if child.String() != "s3://bucket/a/k" {
		t.Errorf("Join = %q, want s3://bucket/a/k", child.String())
	}
}

func TestAbsPathPassesThroughRecognizedSchemes(t *testing.T) {
	in := "s3://bucket/a/b"
	if got := AbsPath(in); got != in {
		t.Errorf("AbsPath(%q) = %q, want unchanged", in, got)
	}
}

func TestAbsPathCanonicalizesLocalPath(t *testing.T) {
	got := AbsPath("/tmp/x")
	if got != "file:///tmp/x" {
		t.Errorf("AbsPath(/tmp/x) = %q, want file:///tmp/x", got)
	}
}
