package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"paradise/config"
	"paradise/infras/otel/mocks"
	bookingMocks "paradise/internal/domains/booking/mocks"
	"paradise/internal/domains/booking/model"
	"paradise/internal/domains/booking/model/dto"
	"paradise/internal/domains/booking/service"
	cacheMocks "paradise/shared/cache/mocks"
	gDto "paradise/shared/dto"
	"paradise/shared/failure"
)

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}

	return t
}

func TestBookingService_Create(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.CreateBookingRequest
		setupMock func(mockRepo *bookingMocks.MockBooking, mockCache *cacheMocks.MockRedisCache) func()
		wantErr   bool
		wantCode  int
		wantPrice int64
		wantDays  int64
	}{
		{
			name: "successful booking",
			req: dto.CreateBookingRequest{
				GuestName:   "Alice",
				GuestPhone:  "+62-811-000-111",
				StartDate:   "2025-06-01",
				EndDate:     "2025-06-04",
				BookingType: "Stay",
			},
			setupMock: func(mockRepo *bookingMocks.MockBooking, mockCache *cacheMocks.MockRedisCache) func() {
				mockRepo.EXPECT().
					CreateIfAvailable(gomock.Any(), gomock.Any()).
					Return(int64(1), nil, nil)

				return expectCacheCleared(mockCache)
			},
			wantPrice: 12000,
			wantDays:  3,
		},
		{
			name: "successful same day function",
			req: dto.CreateBookingRequest{
				GuestName:   "Bob",
				GuestPhone:  "+62-811-000-222",
				StartDate:   "2025-07-10",
				EndDate:     "2025-07-10",
				BookingType: "Function",
			},
			setupMock: func(mockRepo *bookingMocks.MockBooking, mockCache *cacheMocks.MockRedisCache) func() {
				mockRepo.EXPECT().
					CreateIfAvailable(gomock.Any(), gomock.Any()).
					Return(int64(2), nil, nil)

				return expectCacheCleared(mockCache)
			},
			wantPrice: 5500,
			wantDays:  1,
		},
		{
			name: "dates already taken",
			req: dto.CreateBookingRequest{
				GuestName:   "Carol",
				GuestPhone:  "+62-811-000-333",
				StartDate:   "2025-06-03",
				EndDate:     "2025-06-05",
				BookingType: "Stay",
			},
			setupMock: func(mockRepo *bookingMocks.MockBooking, _ *cacheMocks.MockRedisCache) func() {
				conflicts := []model.Booking{
					{
						ID:          1,
						GuestName:   "Alice",
						StartDate:   date("2025-06-01"),
						EndDate:     date("2025-06-04"),
						BookingType: model.TypeStay,
					},
				}
				mockRepo.EXPECT().
					CreateIfAvailable(gomock.Any(), gomock.Any()).
					Return(int64(0), conflicts, nil)

				return nil
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "malformed start date",
			req: dto.CreateBookingRequest{
				GuestName:   "Dave",
				GuestPhone:  "+62-811-000-444",
				StartDate:   "not-a-date",
				EndDate:     "2025-06-05",
				BookingType: "Stay",
			},
			setupMock: func(_ *bookingMocks.MockBooking, _ *cacheMocks.MockRedisCache) func() { return nil },
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unknown booking type",
			req: dto.CreateBookingRequest{
				GuestName:   "Dave",
				GuestPhone:  "+62-811-000-444",
				StartDate:   "2025-06-03",
				EndDate:     "2025-06-05",
				BookingType: "Wedding",
			},
			setupMock: func(_ *bookingMocks.MockBooking, _ *cacheMocks.MockRedisCache) func() { return nil },
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "repository error",
			req: dto.CreateBookingRequest{
				GuestName:   "Eve",
				GuestPhone:  "+62-811-000-555",
				StartDate:   "2025-08-01",
				EndDate:     "2025-08-03",
				BookingType: "Stay",
			},
			setupMock: func(mockRepo *bookingMocks.MockBooking, _ *cacheMocks.MockRedisCache) func() {
				mockRepo.EXPECT().
					CreateIfAvailable(gomock.Any(), gomock.Any()).
					Return(int64(0), nil, errors.New("database error"))

				return nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := bookingMocks.NewMockBooking(ctrl)
			mockCache := cacheMocks.NewMockRedisCache(ctrl)
			mockOtel := mocks.NewOtel()

			cfg := &config.Config{}
			cfg.Cache.TTL = 3600

			svc := service.New(mockRepo, cfg, mockCache, mockOtel, nil)

			wait := tt.setupMock(mockRepo, mockCache)
			if wait != nil {
				defer wait()
			}

			res, err := svc.Create(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)

				if tt.wantCode != 0 {
					assert.Equal(t, tt.wantCode, failure.GetCode(err))
				}

				return
			}

			assert.NoError(t, err)
			assert.NotZero(t, res.ID)
			assert.Equal(t, tt.wantPrice, res.Price)
			assert.Equal(t, tt.wantDays, res.NumDays)
		})
	}
}

// expectCacheCleared registers the three Clear calls Create fires in the
// background and returns a wait that blocks until all of them have landed.
func expectCacheCleared(mockCache *cacheMocks.MockRedisCache) func() {
	cleared := make(chan struct{}, 3)

	mockCache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) error {
			cleared <- struct{}{}

			return nil
		}).
		Times(3)

	return func() {
		for i := 0; i < 3; i++ {
			<-cleared
		}
	}
}

func TestBookingService_CheckAvailability(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, nil)

	tests := []struct {
		name          string
		req           dto.AvailabilityRequest
		setupMock     func()
		wantErr       bool
		wantAvailable bool
		wantConflicts int
	}{
		{
			name: "empty ledger is available",
			req:  dto.AvailabilityRequest{StartDate: "2025-06-01", EndDate: "2025-06-04"},
			setupMock: func() {
				mockRepo.EXPECT().
					FindOverlapping(gomock.Any(), date("2025-06-01"), date("2025-06-04"), int64(0)).
					Return(nil, nil)
			},
			wantAvailable: true,
		},
		{
			name: "overlapping booking is reported",
			req:  dto.AvailabilityRequest{StartDate: "2025-06-03", EndDate: "2025-06-05"},
			setupMock: func() {
				conflicts := []model.Booking{
					{
						ID:          1,
						GuestName:   "Alice",
						StartDate:   date("2025-06-01"),
						EndDate:     date("2025-06-04"),
						BookingType: model.TypeStay,
					},
				}
				mockRepo.EXPECT().
					FindOverlapping(gomock.Any(), date("2025-06-03"), date("2025-06-05"), int64(0)).
					Return(conflicts, nil)
			},
			wantAvailable: false,
			wantConflicts: 1,
		},
		{
			name: "back to back range is available",
			req:  dto.AvailabilityRequest{StartDate: "2025-06-04", EndDate: "2025-06-06"},
			setupMock: func() {
				mockRepo.EXPECT().
					FindOverlapping(gomock.Any(), date("2025-06-04"), date("2025-06-06"), int64(0)).
					Return(nil, nil)
			},
			wantAvailable: true,
		},
		{
			name:      "malformed date",
			req:       dto.AvailabilityRequest{StartDate: "2025-06-04", EndDate: "garbage"},
			setupMock: func() {},
			wantErr:   true,
		},
		{
			name: "repository error",
			req:  dto.AvailabilityRequest{StartDate: "2025-06-01", EndDate: "2025-06-04"},
			setupMock: func() {
				mockRepo.EXPECT().
					FindOverlapping(gomock.Any(), gomock.Any(), gomock.Any(), int64(0)).
					Return(nil, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := svc.CheckAvailability(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantAvailable, res.Available)
			assert.Len(t, res.Conflicts, tt.wantConflicts)
		})
	}
}

func TestBookingService_GetAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, nil)

	params := gDto.QueryParams{
		Page:    1,
		Limit:   10,
		SortBy:  model.FieldCreatedAt,
		SortDir: gDto.SortDirDesc,
	}

	t.Run("cache miss hits the repository", func(t *testing.T) {
		bookings := []model.Booking{
			{
				ID:          2,
				GuestName:   "Bob",
				GuestPhone:  "+62-811-000-222",
				StartDate:   date("2025-07-10"),
				EndDate:     date("2025-07-10"),
				BookingType: model.TypeFunction,
				Price:       5500,
			},
			{
				ID:          1,
				GuestName:   "Alice",
				GuestPhone:  "+62-811-000-111",
				StartDate:   date("2025-06-01"),
				EndDate:     date("2025-06-04"),
				BookingType: model.TypeStay,
				Price:       12000,
			},
		}

		mockCache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss")).
			Times(3)
		mockRepo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(2, nil)
		mockRepo.EXPECT().
			SumPrice(gomock.Any(), gomock.Any()).
			Return(int64(17500), nil)
		mockRepo.EXPECT().
			GetAll(gomock.Any(), params, gomock.Any()).
			Return(bookings, nil)
		mockCache.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).
			AnyTimes()

		res, err := svc.GetAll(context.Background(), params, gDto.FilterGroup{})

		assert.NoError(t, err)
		assert.Len(t, res.Bookings, 2)
		assert.Equal(t, 2, res.TotalData)
		assert.Equal(t, int64(17500), res.TotalRevenue)
		assert.Equal(t, "Bob", res.Bookings[0].GuestName)
	})

	t.Run("repository error", func(t *testing.T) {
		mockCache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss")).
			AnyTimes()
		mockRepo.EXPECT().
			Count(gomock.Any(), gomock.Any()).
			Return(0, errors.New("database error"))

		_, err := svc.GetAll(context.Background(), params, gDto.FilterGroup{})

		assert.Error(t, err)
	})
}

func TestBookingService_TotalRevenue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := bookingMocks.NewMockBooking(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, cfg, mockCache, mockOtel, nil)

	t.Run("sums the ledger on a cache miss", func(t *testing.T) {
		mockCache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("cache miss"))
		mockRepo.EXPECT().
			SumPrice(gomock.Any(), gomock.Any()).
			Return(int64(17500), nil)
		mockCache.EXPECT().
			Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil).
			AnyTimes()

		revenue, err := svc.TotalRevenue(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, int64(17500), revenue)
	})

	t.Run("serves the cached total", func(t *testing.T) {
		mockCache.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any) error {
				*value.(*int64) = 17500

				return nil
			})

		revenue, err := svc.TotalRevenue(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, int64(17500), revenue)
	})
}
