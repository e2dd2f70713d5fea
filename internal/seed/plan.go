package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is a hand-written fixture set. Entities refer to each other by
// username and post key, so a plan can be written without knowing IDs.
//
//	password: AgoraDemo123!
//	users:
//	  - username: alice
//	    email: alice@example.com
//	    bio: Writes about Go.
//	follows:
//	  - {follower: bob, following: alice}
//	posts:
//	  - {key: hello, author: alice, content: Hello agora}
//	likes:
//	  - {user: bob, post: hello}
//	comments:
//	  - {author: bob, post: hello, content: Welcome}
type Plan struct {
	Password string        `yaml:"password"`
	Users    []PlanUser    `yaml:"users"`
	Follows  []PlanFollow  `yaml:"follows"`
	Posts    []PlanPost    `yaml:"posts"`
	Likes    []PlanLike    `yaml:"likes"`
	Comments []PlanComment `yaml:"comments"`
}

type PlanUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Bio      string `yaml:"bio"`
	Image    string `yaml:"image"`
}

type PlanFollow struct {
	Follower  string `yaml:"follower"`
	Following string `yaml:"following"`
}

type PlanPost struct {
	Key     string `yaml:"key"`
	Author  string `yaml:"author"`
	Content string `yaml:"content"`
	Media   string `yaml:"media"`
}

type PlanLike struct {
	User string `yaml:"user"`
	Post string `yaml:"post"`
}

type PlanComment struct {
	Author  string `yaml:"author"`
	Post    string `yaml:"post"`
	Content string `yaml:"content"`
}

// LoadPlan reads and parses a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes a YAML plan and checks its references.
func ParsePlan(data []byte) (*Plan, error) {
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if err := plan.check(); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (p *Plan) check() error {
	users := make(map[string]bool, len(p.Users))
	for _, u := range p.Users {
		if u.Username == "" {
			return fmt.Errorf("plan: user without username")
		}
		if users[u.Username] {
			return fmt.Errorf("plan: duplicate user %q", u.Username)
		}
		users[u.Username] = true
	}

	posts := make(map[string]bool, len(p.Posts))
	for _, post := range p.Posts {
		if post.Key == "" {
			return fmt.Errorf("plan: post without key")
		}
		if posts[post.Key] {
			return fmt.Errorf("plan: duplicate post key %q", post.Key)
		}
		if !users[post.Author] {
			return fmt.Errorf("plan: post %q has unknown author %q", post.Key, post.Author)
		}
		posts[post.Key] = true
	}

	for _, f := range p.Follows {
		if !users[f.Follower] || !users[f.Following] {
			return fmt.Errorf("plan: follow %s -> %s references an unknown user", f.Follower, f.Following)
		}
	}
	for _, l := range p.Likes {
		if !users[l.User] || !posts[l.Post] {
			return fmt.Errorf("plan: like %s -> %s references an unknown user or post", l.User, l.Post)
		}
	}
	for _, c := range p.Comments {
		if !users[c.Author] || !posts[c.Post] {
			return fmt.Errorf("plan: comment %s -> %s references an unknown user or post", c.Author, c.Post)
		}
	}
	return nil
}
