package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/catalog-service/internal/app/catalog/repository"
	"storefront/catalog-service/internal/app/catalog/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type assignerDeps struct {
	categoryRepo *mocks.MockCategoryRepository
	productRepo  *mocks.MockProductRepository
	cache        *mocks.MockRedisCache
	publisher    *mocks.MockMessagePublisher
}

func newAssignerDeps() assignerDeps {
	return assignerDeps{
		categoryRepo: new(mocks.MockCategoryRepository),
		productRepo:  new(mocks.MockProductRepository),
		cache:        new(mocks.MockRedisCache),
		publisher:    new(mocks.MockMessagePublisher),
	}
}

func (d assignerDeps) assigner(concurrency int) *CategoryAssigner {
	return NewCategoryAssigner(d.categoryRepo, d.productRepo, d.cache, d.publisher, concurrency)
}

// expectCategoryCreated имитирует выдачу ID хранилищем
func (d assignerDeps) expectCategoryCreated(id string) {
	d.categoryRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Category")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Category).ID = id
		}).
		Return(nil).Once()
	d.cache.On("DeleteCategories", mock.Anything).Return(nil)
}

// ==================== Validation / creation ====================

func TestAssignCategory_BlankNameIsValidationError(t *testing.T) {
	d := newAssignerDeps()

	report, err := d.assigner(1).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "   "}, []string{"p1"})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, report)
	d.categoryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	d.productRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	d.cache.AssertNotCalled(t, "DeleteCategories", mock.Anything)
}

func TestAssignCategory_CreationFailureTouchesNoProducts(t *testing.T) {
	d := newAssignerDeps()
	cause := errors.New("connection refused")
	d.categoryRepo.On("Create", mock.Anything, mock.Anything).Return(cause)

	report, err := d.assigner(1).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "Accessories"}, []string{"p1", "p2"})

	assert.ErrorIs(t, err, ErrCategoryCreation)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, report)
	d.productRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	d.productRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignCategory_MissingIdentifierIsInvariantViolation(t *testing.T) {
	d := newAssignerDeps()
	d.categoryRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	report, err := d.assigner(1).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "Accessories"}, []string{"p1"})

	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Nil(t, report)
	d.productRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestAssignCategory_NameIsTrimmed(t *testing.T) {
	d := newAssignerDeps()
	d.expectCategoryCreated("cat-1")

	_, err := d.assigner(1).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "  Accessories \n"}, nil)

	require.NoError(t, err)
	created := d.categoryRepo.Calls[0].Arguments.Get(1).(*entity.Category)
	assert.Equal(t, "Accessories", created.Name)
}

// ==================== Batch ====================

func TestAssignCategory_EmptyListStillCreatesCategory(t *testing.T) {
	d := newAssignerDeps()
	d.expectCategoryCreated("cat-1")

	report, err := d.assigner(1).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "Accessories"}, []string{})

	require.NoError(t, err)
	assert.Equal(t, "cat-1", report.CreatedCategoryID)
	assert.Zero(t, report.SuccessCount)
	assert.Zero(t, report.FailedCount)
	assert.Empty(t, report.Failures)
	d.categoryRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestAssignCategory_MixedOutcomes(t *testing.T) {
	d := newAssignerDeps()
	d.expectCategoryCreated("cat-acc")

	d.productRepo.On("GetByID", mock.Anything, "p1").
		Return(&entity.Product{ID: "p1", Price: 100, Discount: 25, Quantity: 2, InStock: true, CategoryIDs: []string{"c-old"}}, nil)
	d.productRepo.On("GetByID", mock.Anything, "p2").
		Return(nil, repository.ErrProductNotFound)
	d.productRepo.On("GetByID", mock.Anything, "p3").
		Return(&entity.Product{ID: "p3", Price: 10, CategoryIDs: []string{"cat-acc"}}, nil)

	expectedFields := entity.ProductFields{
		Price:       100,
		Discount:    25,
		Quantity:    2,
		InStock:     true,
		CategoryIDs: []string{"c-old", "cat-acc"},
	}
	d.productRepo.On("Update", mock.Anything, "p1", expectedFields).
		Return(&entity.Product{ID: "p1"}, nil).Once()
	d.publisher.On("PublishMessage", mock.Anything, "p1", mock.Anything).Return(nil).Once()

	report, err := d.assigner(1).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "Accessories"}, []string{"p1", "p2", "p3"})

	require.NoError(t, err)
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.SkippedCount)
	assert.Equal(t, 1, report.FailedCount)
	assert.Equal(t, []entity.AssignmentOutcome{
		{ProductID: "p2", Status: entity.AssignmentFailed, ErrorDetail: "product not found"},
	}, report.Failures)
	assert.Equal(t, []string{"p1", "p2", "p3"}, outcomeIDs(report))
	assert.True(t, report.IsPartialSuccess())

	d.productRepo.AssertNumberOfCalls(t, "Update", 1)
	d.productRepo.AssertNotCalled(t, "Update", mock.Anything, "p3", mock.Anything)
	d.publisher.AssertExpectations(t)
}

func TestAssignCategory_OneMissingAmongManyNeverAborts(t *testing.T) {
	d := newAssignerDeps()
	d.expectCategoryCreated("cat-1")

	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		if id == "c" {
			d.productRepo.On("GetByID", mock.Anything, id).Return(nil, repository.ErrProductNotFound)
			continue
		}
		d.productRepo.On("GetByID", mock.Anything, id).Return(&entity.Product{ID: id, Price: 5}, nil)
	}
	d.productRepo.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(&entity.Product{}, nil)
	d.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	report, err := d.assigner(1).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "Sale"}, ids)

	require.NoError(t, err)
	assert.Equal(t, 1, report.FailedCount)
	assert.Equal(t, len(ids)-1, report.SuccessCount+report.SkippedCount)
	assert.Equal(t, "c", report.Failures[0].ProductID)
}

func TestAssignCategory_UpdateFailureCarriesErrorText(t *testing.T) {
	d := newAssignerDeps()
	d.expectCategoryCreated("cat-1")
	d.productRepo.On("GetByID", mock.Anything, "p1").Return(&entity.Product{ID: "p1"}, nil)
	d.productRepo.On("Update", mock.Anything, "p1", mock.Anything).Return(nil, errors.New("deadlock detected"))

	report, err := d.assigner(1).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "Sale"}, []string{"p1"})

	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "deadlock detected", report.Failures[0].ErrorDetail)
	assert.False(t, report.IsPartialSuccess())
	d.publisher.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssignCategory_DuplicateIDsProcessedOnce(t *testing.T) {
	d := newAssignerDeps()
	d.expectCategoryCreated("cat-1")
	d.productRepo.On("GetByID", mock.Anything, "p1").Return(&entity.Product{ID: "p1"}, nil).Once()
	d.productRepo.On("Update", mock.Anything, "p1", mock.Anything).Return(&entity.Product{ID: "p1"}, nil).Once()
	d.publisher.On("PublishMessage", mock.Anything, "p1", mock.Anything).Return(nil).Once()

	report, err := d.assigner(1).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "Sale"}, []string{"p1", "p1", "p1"})

	require.NoError(t, err)
	assert.Len(t, report.Outcomes, 1)
	assert.Equal(t, 1, report.SuccessCount)
}

func TestAssignCategory_NonNumericFieldsCoercedToZero(t *testing.T) {
	d := newAssignerDeps()
	d.expectCategoryCreated("cat-1")

	product := &entity.Product{ID: "p1", Price: 12, Discount: math.NaN(), Quantity: 1}
	d.productRepo.On("GetByID", mock.Anything, "p1").Return(product, nil)
	d.productRepo.On("Update", mock.Anything, "p1", mock.MatchedBy(func(f entity.ProductFields) bool {
		return f.Price == 12 && f.Discount == 0 && f.Quantity == 1
	})).Return(&entity.Product{ID: "p1"}, nil)
	d.publisher.On("PublishMessage", mock.Anything, "p1", mock.Anything).Return(nil)

	report, err := d.assigner(1).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "Sale"}, []string{"p1"})

	require.NoError(t, err)
	assert.Equal(t, 1, report.SuccessCount)
}

func TestAssignCategory_CacheAndPublishFailuresAreNotFatal(t *testing.T) {
	d := newAssignerDeps()
	d.categoryRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*entity.Category).ID = "cat-1" }).
		Return(nil)
	d.cache.On("DeleteCategories", mock.Anything).Return(errors.New("redis down"))
	d.productRepo.On("GetByID", mock.Anything, "p1").Return(&entity.Product{ID: "p1"}, nil)
	d.productRepo.On("Update", mock.Anything, "p1", mock.Anything).Return(&entity.Product{ID: "p1"}, nil)
	d.publisher.On("PublishMessage", mock.Anything, "p1", mock.Anything).Return(errors.New("kafka down"))

	report, err := d.assigner(1).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "Sale"}, []string{"p1"})

	require.NoError(t, err)
	assert.Equal(t, 1, report.SuccessCount)
}

func TestAssignCategory_CancelledContextFailsRemainingItems(t *testing.T) {
	d := newAssignerDeps()
	d.expectCategoryCreated("cat-1")

	ctx, cancel := context.WithCancel(context.Background())
	d.productRepo.On("GetByID", mock.Anything, "p1").
		Run(func(mock.Arguments) { cancel() }).
		Return(&entity.Product{ID: "p1", CategoryIDs: []string{"cat-1"}}, nil)

	report, err := d.assigner(1).AssignCategoryToProducts(ctx,
		entity.CategoryInput{CategoryName: "Sale"}, []string{"p1", "p2", "p3"})

	require.NoError(t, err)
	assert.Equal(t, 1, report.SkippedCount)
	assert.Equal(t, 2, report.FailedCount)
	assert.Equal(t, context.Canceled.Error(), report.Failures[0].ErrorDetail)
	d.productRepo.AssertNotCalled(t, "GetByID", mock.Anything, "p2")
}

func TestAssignCategory_ConcurrentKeepsInputOrder(t *testing.T) {
	d := newAssignerDeps()
	d.expectCategoryCreated("cat-1")

	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	for _, id := range ids {
		d.productRepo.On("GetByID", mock.Anything, id).Return(&entity.Product{ID: id}, nil)
	}
	d.productRepo.On("Update", mock.Anything, "p4", mock.Anything).Return(nil, errors.New("timeout"))
	d.productRepo.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(&entity.Product{}, nil)
	d.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	report, err := d.assigner(3).AssignCategoryToProducts(context.Background(),
		entity.CategoryInput{CategoryName: "Sale"}, ids)

	require.NoError(t, err)
	assert.Equal(t, ids, outcomeIDs(report))
	assert.Equal(t, 5, report.SuccessCount)
	assert.Equal(t, "p4", report.Failures[0].ProductID)
}

func outcomeIDs(report *entity.AssignmentReport) []string {
	ids := make([]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		ids = append(ids, o.ProductID)
	}
	return ids
}
