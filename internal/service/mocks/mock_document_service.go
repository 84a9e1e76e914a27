package mocks

import (
	"context"

	"doclib/internal/model"
	"doclib/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) UploadFiles(ctx context.Context, ownerID string, files []service.UploadFile) *service.Result[[]string] {
	args := m.Called(ctx, ownerID, files)
	return args.Get(0).(*service.Result[[]string])
}

func (m *MockDocumentService) DownloadFile(ctx context.Context, ownerID, fileName string) *service.Result[*model.FileResponse] {
	args := m.Called(ctx, ownerID, fileName)
	return args.Get(0).(*service.Result[*model.FileResponse])
}

func (m *MockDocumentService) DownloadFiles(ctx context.Context, ownerID string, fileNames []string) *service.Result[*model.FileResponse] {
	args := m.Called(ctx, ownerID, fileNames)
	return args.Get(0).(*service.Result[*model.FileResponse])
}

func (m *MockDocumentService) ShareFile(ctx context.Context, ownerID, fileName string, expirationHours int) *service.Result[string] {
	args := m.Called(ctx, ownerID, fileName, expirationHours)
	return args.Get(0).(*service.Result[string])
}

func (m *MockDocumentService) DownloadSharedFile(ctx context.Context, tokenString string) *service.Result[*model.FileResponse] {
	args := m.Called(ctx, tokenString)
	return args.Get(0).(*service.Result[*model.FileResponse])
}

func (m *MockDocumentService) GetSharedFile(ctx context.Context, tokenString string) *service.Result[*model.DocumentInfo] {
	args := m.Called(ctx, tokenString)
	return args.Get(0).(*service.Result[*model.DocumentInfo])
}

func (m *MockDocumentService) GetFiles(ctx context.Context, ownerID string) *service.Result[[]model.DocumentInfo] {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(*service.Result[[]model.DocumentInfo])
}

func (m *MockDocumentService) ListOrphans(ctx context.Context, ownerID string) *service.Result[[]string] {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(*service.Result[[]string])
}
