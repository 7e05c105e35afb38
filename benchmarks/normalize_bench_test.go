package benchmarks_test

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	normalizr "github.com/reoring/gonormalizr"
	"github.com/reoring/gonormalizr/codec"
	"github.com/reoring/gonormalizr/dsl"
)

// ---- Helpers ----

func postSchema() normalizr.Schema {
	user := dsl.Object("user").
		Field("id", dsl.Number()).Required().
		Field("name", dsl.String()).
		Build()
	comment := dsl.Object("comment").
		Field("id", dsl.Number()).Required().
		Field("body", dsl.String()).
		Field("author", user).
		Build()
	post := dsl.Object("post").
		Field("id", dsl.Number()).Required().
		Field("title", dsl.String(dsl.MaxLen(200))).
		Field("author", user).
		Field("comments", dsl.Array(comment)).
		Build()
	return normalizr.NewSchema("posts", dsl.Array(post))
}

// generatePostsJSON returns a JSON array of posts that share numUsers authors:
// [{"id":0,"title":"t0","author":{"id":0,"name":"u0"},"comments":[...]}, ...]
func generatePostsJSON(numPosts, commentsPerPost, numUsers int) []byte {
	var buf bytes.Buffer
	buf.Grow(numPosts * (96 + commentsPerPost*64))
	user := func(i int) {
		u := i % numUsers
		buf.WriteString(`{"id":`)
		buf.WriteString(strconv.Itoa(u))
		buf.WriteString(`,"name":"u`)
		buf.WriteString(strconv.Itoa(u))
		buf.WriteString(`"}`)
	}
	buf.WriteByte('[')
	c := 0
	for i := 0; i < numPosts; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`{"id":`)
		buf.WriteString(strconv.Itoa(i))
		buf.WriteString(`,"title":"t`)
		buf.WriteString(strconv.Itoa(i))
		buf.WriteString(`","author":`)
		user(i)
		buf.WriteString(`,"comments":[`)
		for j := 0; j < commentsPerPost; j++ {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`{"id":`)
			buf.WriteString(strconv.Itoa(c))
			buf.WriteString(`,"body":"b","author":`)
			user(c)
			buf.WriteByte('}')
			c++
		}
		buf.WriteString(`]}`)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func loadPosts(b *testing.B, numPosts int) any {
	b.Helper()
	v, err := codec.DecodeValue(generatePostsJSON(numPosts, 5, 50))
	if err != nil {
		b.Fatalf("decode failed: %v", err)
	}
	return v
}

func benchOpts() normalizr.Options {
	return normalizr.Options{Registry: normalizr.NewRegistry()}
}

// ---- Benchmarks ----

func BenchmarkNormalize(b *testing.B) {
	for _, n := range []int{10, 1000} {
		b.Run("posts="+strconv.Itoa(n), func(b *testing.B) {
			ctx := context.Background()
			s := postSchema()
			data := loadPosts(b, n)
			o := benchOpts()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := normalizr.Normalize(ctx, data, s, o); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkNormalize_SkipValidation(b *testing.B) {
	ctx := context.Background()
	s := postSchema()
	data := loadPosts(b, 1000)
	o := benchOpts()
	o.SkipValidation = true
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := normalizr.Normalize(ctx, data, s, o); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDenormalize(b *testing.B) {
	ctx := context.Background()
	s := postSchema()
	o := benchOpts()
	nd, err := normalizr.Normalize(ctx, loadPosts(b, 1000), s, o)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := normalizr.Denormalize(ctx, nd, s, o); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSafeNormalize(b *testing.B) {
	ctx := context.Background()
	s := postSchema()
	data := loadPosts(b, 10)
	o := benchOpts()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := normalizr.SafeNormalize(ctx, data, s, o); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFingerprint(b *testing.B) {
	s := postSchema()
	data := loadPosts(b, 1000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := normalizr.Fingerprint(data, s); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCodec_RoundTrip(b *testing.B) {
	ctx := context.Background()
	nd, err := normalizr.Normalize(ctx, loadPosts(b, 1000), postSchema(), benchOpts())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		raw, err := codec.Marshal(nd)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := codec.Unmarshal(raw); err != nil {
			b.Fatal(err)
		}
	}
}
