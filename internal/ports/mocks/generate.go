//go:generate mockgen -source=../cart_cache.go       -destination=./mock_cart_cache.go       -package=mocks
//go:generate mockgen -source=../cart_repository.go  -destination=./mock_cart_repository.go  -package=mocks
//go:generate mockgen -source=../order_repository.go -destination=./mock_order_repository.go -package=mocks
//go:generate mockgen -source=../catalog.go          -destination=./mock_catalog.go          -package=mocks
//go:generate mockgen -source=../order_publisher.go  -destination=./mock_order_publisher.go  -package=mocks
//go:generate mockgen -source=../cart_service.go     -destination=./mock_cart_service.go     -package=mocks
//go:generate mockgen -source=../background_job.go  -destination=./mock_background_job.go  -package=mocks

package mocks
