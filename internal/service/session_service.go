package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"gamesense/app/internal/domain"
	"gamesense/app/internal/export"
	"gamesense/app/internal/feedback"
	"gamesense/app/internal/repository"
	"gamesense/app/internal/storage"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrEmptyUpload       = errors.New("please upload a video first")
	ErrInvalidRating     = fmt.Errorf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	ErrUnknownRoleSkill  = errors.New("unknown role or skill")
	ErrVideoUnavailable  = errors.New("video not available")
	ErrPDFGeneration     = errors.New("failed to generate PDF")
	ErrUnsupportedFormat = storage.ErrUnsupportedFormat
)

// AnalyzeInput is one uploaded clip with the player's choices.
type AnalyzeInput struct {
	User     string
	FileName string
	Data     []byte
	Role     string
	Skill    string
	Rating   int
	Note     string
}

// PDFExport is a rendered feedback document.
type PDFExport struct {
	FileName string
	Data     []byte
}

// SessionService handles clip analysis and the session history.
type SessionService interface {
	Analyze(ctx context.Context, in AnalyzeInput) (*domain.Session, error)
	List(ctx context.Context, user string) ([]domain.Session, error)
	Get(ctx context.Context, user, id string) (*domain.Session, error)
	Delete(ctx context.Context, user, id string) error
	PDF(ctx context.Context, user, id string) (*PDFExport, error)
	VideoURL(ctx context.Context, user, id string) (string, error)
	Catalog() []feedback.RoleSkills
}

// sessionService implements the SessionService interface.
type sessionService struct {
	sessionRepo repository.SessionRepository
	library     *feedback.Library
	fileStorage storage.FileStorage
	videosDir   string
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	library *feedback.Library,
	fileStorage storage.FileStorage,
	videosDir string,
) SessionService {
	if videosDir == "" {
		videosDir = storage.DefaultVideosDir
	}
	return &sessionService{
		sessionRepo: sessionRepo,
		library:     library,
		fileStorage: fileStorage,
		videosDir:   videosDir,
	}
}

// Analyze stores the clip, generates feedback and records the session. A
// failed blob upload does not fail the session; it is kept without a video.
func (s *sessionService) Analyze(ctx context.Context, in AnalyzeInput) (*domain.Session, error) {
	if len(in.Data) == 0 || strings.TrimSpace(in.FileName) == "" {
		return nil, ErrEmptyUpload
	}
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		return nil, ErrInvalidRating
	}
	if !s.library.Known(in.Role, in.Skill) {
		return nil, fmt.Errorf("%w: %s / %s", ErrUnknownRoleSkill, in.Role, in.Skill)
	}

	uid := strings.ReplaceAll(uuid.NewString(), "-", "")
	key, err := storage.VideoKey(s.videosDir, uid, in.FileName)
	if err != nil {
		return nil, err
	}

	savedPath := key
	videoURL, err := s.fileStorage.PutObject(ctx, key, in.Data, storage.ContentType(key))
	if err != nil {
		log.Printf("ERROR: video upload failed for session %s: %v", uid, err)
		savedPath, videoURL = "", ""
	}

	result := s.library.Generate(feedback.Request{
		VideoName: in.FileName,
		Role:      in.Role,
		Skill:     in.Skill,
		Rating:    in.Rating,
		Note:      in.Note,
	})

	session := &domain.Session{
		ID:                uid,
		User:              in.User,
		VideoOriginalName: in.FileName,
		VideoSavedPath:    savedPath,
		VideoURL:          videoURL,
		Role:              in.Role,
		Skill:             in.Skill,
		Rating:            in.Rating,
		CustomPrompt:      in.Note,
		PromptText:        result.Prompt,
		Feedback:          result.Feedback,
		Highlights:        result.Highlights,
		CreatedAt:         domain.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	log.Printf("INFO: session %s saved for %s (%s / %s)", uid, in.User, in.Role, in.Skill)
	return session, nil
}

// List returns the user's sessions, newest first.
func (s *sessionService) List(ctx context.Context, user string) ([]domain.Session, error) {
	sessions, err := s.sessionRepo.ListByUser(ctx, user)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(sessions)
	return sessions, nil
}

func sortNewestFirst(sessions []domain.Session) {
	slices.SortStableFunc(sessions, func(a, b domain.Session) int {
		return b.CreatedAt.Compare(a.CreatedAt.Time)
	})
}

// Get returns a session owned by user. Sessions of other users are reported
// as not found.
func (s *sessionService) Get(ctx context.Context, user, id string) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.User != user {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes the session record, then the clip on a best-effort basis.
func (s *sessionService) Delete(ctx context.Context, user, id string) error {
	session, err := s.Get(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	removeVideo(ctx, s.fileStorage, session)
	return nil
}

func removeVideo(ctx context.Context, fs storage.FileStorage, session *domain.Session) {
	if session.VideoSavedPath == "" {
		return
	}
	if err := fs.DeleteObject(ctx, session.VideoSavedPath); err != nil {
		log.Printf("WARN: could not delete video %s of session %s: %v", session.VideoSavedPath, session.ID, err)
	}
}

// PDF renders the session feedback as "<video stem>_feedback.pdf".
func (s *sessionService) PDF(ctx context.Context, user, id string) (*PDFExport, error) {
	session, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	data, err := export.SessionPDF(session.VideoOriginalName, session.PromptText, session.Feedback)
	if err != nil {
		log.Printf("ERROR: rendering PDF for session %s: %v", id, err)
		return nil, ErrPDFGeneration
	}
	stem := storage.Stem(session.VideoOriginalName)
	if stem == "" || stem == "." || stem == "/" {
		stem = "video"
	}
	return &PDFExport{FileName: stem + "_feedback.pdf", Data: data}, nil
}

// VideoURL returns a URL the clip can be played from. Keys known to the blob
// store win over the URL recorded at upload time.
func (s *sessionService) VideoURL(ctx context.Context, user, id string) (string, error) {
	session, err := s.Get(ctx, user, id)
	if err != nil {
		return "", err
	}
	if session.VideoSavedPath != "" {
		u, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, session.VideoSavedPath, storage.DefaultPresignedURLExpiry)
		if err == nil {
			return u, nil
		}
		log.Printf("WARN: no download URL for %s: %v", session.VideoSavedPath, err)
	}
	if session.VideoURL != "" {
		return session.VideoURL, nil
	}
	return "", ErrVideoUnavailable
}

// Catalog returns the roles and skills feedback can be generated for.
func (s *sessionService) Catalog() []feedback.RoleSkills {
	return s.library.Catalog()
}
