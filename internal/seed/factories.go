package seed

import (
	"fmt"
	"strings"
	"time"

	"agora/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is given to every generated user. It satisfies the
// registration password rules.
const DefaultPassword = "AgoraDemo123!"

// Factory produces fake but valid service inputs. A Factory built with the
// same seed yields the same sequence of values.
type Factory struct {
	faker    *gofakeit.Faker
	password string
	maxDays  int
}

// NewFactory creates a Factory. A zero seed picks a time based one.
func NewFactory(seed int64, opts Options) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	password := opts.Password
	if password == "" {
		password = DefaultPassword
	}
	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{faker: gofakeit.New(seed), password: password, maxDays: maxDays}
}

// User builds a registration for the n-th generated user. The index keeps
// usernames and emails unique within a run.
func (f *Factory) User(n int) service.RegisterInput {
	first := alnum(f.faker.FirstName())
	last := alnum(f.faker.LastName())
	if first == "" {
		first = "user"
	}
	if last == "" {
		last = "x"
	}

	username := fmt.Sprintf("%s_%s%d", strings.ToLower(first), strings.ToLower(last[:1]), n)
	if len(username) > 30 {
		username = fmt.Sprintf("%s%d", strings.ToLower(first[:min(len(first), 20)]), n)
	}

	return service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: f.password,
	}
}

// Profile builds a bio and avatar for username.
func (f *Factory) Profile(username string) service.UpdateProfileInput {
	bio := f.faker.Sentence(10)
	image := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username)
	return service.UpdateProfileInput{Bio: &bio, Image: &image}
}

// Post builds post content. Roughly four in ten posts carry a media reference.
func (f *Factory) Post() service.CreatePostInput {
	in := service.CreatePostInput{Content: f.faker.Paragraph(1, f.faker.Number(1, 4), 12, "\n")}
	if f.faker.Number(1, 10) <= 4 {
		in.Media = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}
	return in
}

// Comment builds comment content.
func (f *Factory) Comment() string {
	return f.faker.Sentence(f.faker.Number(4, 14))
}

// CreatedAt picks a creation time within the configured window before now.
func (f *Factory) CreatedAt(now time.Time) time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays-1))*24*time.Hour +
		time.Duration(f.faker.Number(0, 23))*time.Hour +
		time.Duration(f.faker.Number(0, 59))*time.Minute
	return now.Add(-back).UTC()
}

// Pick returns k distinct indexes in [0, n) excluding skip (pass -1 to
// exclude nothing).
func (f *Factory) Pick(n, k, skip int) []int {
	pool := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != skip {
			pool = append(pool, i)
		}
	}
	f.faker.ShuffleInts(pool)
	if k > len(pool) {
		k = len(pool)
	}
	if k < 0 {
		k = 0
	}
	return pool[:k]
}

// Intn returns a value in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return f.faker.Number(0, n-1)
}

func alnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
