package backend

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Service is the backend surface consumed by handlers and flows.
type Service interface {
	Login(ctx context.Context, creds Credentials) (TokenPair, error)
	Register(ctx context.Context, reg Registration) (Account, error)
	Profile(ctx context.Context, token string) (Profile, error)
	UpdateProfile(ctx context.Context, token string, upd ProfileUpdate) (Profile, error)
	CreatePrediction(ctx context.Context, token string, in PredictionInput) (Prediction, error)
	PredictionHistory(ctx context.Context, token string) ([]Prediction, error)
	Prediction(ctx context.Context, token string, id int64) (Prediction, error)
	UpdatePrediction(ctx context.Context, token string, id int64, in PredictionInput) (Prediction, error)
	DeletePrediction(ctx context.Context, token string, id int64) error
}

var _ Service = (*Client)(nil)

// StaticService is an in-memory Service for tests and local previews.
// Accounts maps email to password; a successful login returns "token-<email>".
type StaticService struct {
	mu          sync.Mutex
	Accounts    map[string]string
	Usernames   map[string]string
	predictions map[string][]Prediction
	nextID      int64
	now         func() time.Time
}

// NewStaticService constructs a StaticService with the given email/password pairs.
func NewStaticService(accounts map[string]string) *StaticService {
	if accounts == nil {
		accounts = map[string]string{}
	}
	return &StaticService{
		Accounts:    accounts,
		Usernames:   map[string]string{},
		predictions: map[string][]Prediction{},
		now:         time.Now,
	}
}

func (s *StaticService) Login(_ context.Context, creds Credentials) (TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pw, ok := s.Accounts[creds.Email]; !ok || pw != creds.Password {
		return TokenPair{}, &APIError{Status: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	return TokenPair{Access: "token-" + creds.Email}, nil
}

func (s *StaticService) Register(_ context.Context, reg Registration) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reg.Email == "" || reg.Password == "" {
		return Account{}, &APIError{Status: http.StatusBadRequest, Message: "email: This field may not be blank."}
	}
	if _, exists := s.Accounts[reg.Email]; exists {
		return Account{}, &APIError{Status: http.StatusBadRequest, Message: "email: A user with that email already exists."}
	}
	s.Accounts[reg.Email] = reg.Password
	s.Usernames[reg.Email] = reg.Username
	return Account{Username: reg.Username, Email: reg.Email}, nil
}

func (s *StaticService) Profile(_ context.Context, token string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, err := s.owner(token)
	if err != nil {
		return Profile{}, err
	}
	name := s.Usernames[email]
	if name == "" {
		name = email
	}
	return Profile{Username: name, Email: email, WelcomeMessage: "Welcome " + name + " 👋"}, nil
}

func (s *StaticService) UpdateProfile(_ context.Context, token string, upd ProfileUpdate) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, err := s.owner(token)
	if err != nil {
		return Profile{}, err
	}
	if upd.Username != "" {
		s.Usernames[email] = upd.Username
	}
	return Profile{Username: s.Usernames[email], Email: email, Message: "Profile updated successfully"}, nil
}

func (s *StaticService) CreatePrediction(_ context.Context, token string, in PredictionInput) (Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, err := s.owner(token)
	if err != nil {
		return Prediction{}, err
	}
	s.nextID++
	yield := 0.0
	p := Prediction{
		ID:              s.nextID,
		Rainfall:        in.Rainfall,
		Temperature:     in.Temperature,
		Nitrogen:        in.Nitrogen,
		Phosphorus:      in.Phosphorus,
		Potassium:       in.Potassium,
		PH:              in.PH,
		SeedVariety:     in.SeedVariety,
		YieldPrediction: &yield,
		CreatedAt:       s.now().UTC(),
	}
	s.predictions[email] = append(s.predictions[email], p)
	return p, nil
}

func (s *StaticService) PredictionHistory(_ context.Context, token string) ([]Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, err := s.owner(token)
	if err != nil {
		return nil, err
	}
	list := append([]Prediction(nil), s.predictions[email]...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (s *StaticService) Prediction(_ context.Context, token string, id int64) (Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, err := s.owner(token)
	if err != nil {
		return Prediction{}, err
	}
	for _, p := range s.predictions[email] {
		if p.ID == id {
			return p, nil
		}
	}
	return Prediction{}, &APIError{Status: http.StatusNotFound, Message: "Not found."}
}

func (s *StaticService) UpdatePrediction(_ context.Context, token string, id int64, in PredictionInput) (Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, err := s.owner(token)
	if err != nil {
		return Prediction{}, err
	}
	list := s.predictions[email]
	for i := range list {
		if list[i].ID != id {
			continue
		}
		p := &list[i]
		p.Rainfall = in.Rainfall
		p.Temperature = in.Temperature
		p.Nitrogen = in.Nitrogen
		p.Phosphorus = in.Phosphorus
		p.Potassium = in.Potassium
		p.PH = in.PH
		p.SeedVariety = in.SeedVariety
		return *p, nil
	}
	return Prediction{}, &APIError{Status: http.StatusNotFound, Message: "Not found."}
}

func (s *StaticService) DeletePrediction(_ context.Context, token string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, err := s.owner(token)
	if err != nil {
		return err
	}
	list := s.predictions[email]
	for i, p := range list {
		if p.ID == id {
			s.predictions[email] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return &APIError{Status: http.StatusNotFound, Message: "Not found."}
}

// RemoveAccount deletes an account so tokens issued for it are rejected.
func (s *StaticService) RemoveAccount(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Accounts, email)
	delete(s.predictions, email)
}

func (s *StaticService) owner(token string) (string, error) {
	const prefix = "token-"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return "", &APIError{Status: http.StatusUnauthorized, Message: "Authentication credentials were not provided."}
	}
	email := token[len(prefix):]
	if _, ok := s.Accounts[email]; !ok {
		return "", &APIError{Status: http.StatusUnauthorized, Message: "Given token not valid for any token type"}
	}
	return email, nil
}
