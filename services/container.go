package services

import "github.com/gabrielbaute/octopus-photos/repositories"

type Container struct {
	Auth     AuthService
	Users    UserService
	Storage  StorageService
	Photos   PhotoService
	Vault    VaultService
	Albums   AlbumService
	Memories MemoriesService
}

func BuildContainer(repos *repositories.Container, basePath string) *Container {
	authorizer := NewAuthorizer(repos.Users)
	storage := NewStorageService(repos.TxManager, repos.Storages, repos.Photos, basePath)

	return &Container{
		Auth:     NewAuthService(repos.Users, storage),
		Users:    NewUserService(repos.Users, repos.Albums, storage, authorizer),
		Storage:  storage,
		Photos:   NewPhotoService(repos.TxManager, repos.Photos, repos.Storages, authorizer, NewMetadataExtractor(), basePath),
		Vault:    NewVaultService(repos.TxManager, repos.Photos, repos.Storages, repos.VaultAttempts, authorizer, basePath),
		Albums:   NewAlbumService(repos.Albums, repos.Photos, authorizer),
		Memories: NewMemoriesService(repos.Users, repos.Photos),
	}
}
