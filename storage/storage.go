package storage

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"gallery/config"
	"gallery/db"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type StorageSpecificAPI interface {
	GetFullPath(path string) string
	EnsureDirExists(dir string) error
	EnsureLocalFile(path string) error
	ReleaseLocalFile(path string)
	DeleteRemoteFile(path string)
	UpdateRemoteFile(path, mimeType string) error
}

type StorageAPI interface {
	StorageSpecificAPI

	GetSize(path string) int64
	Save(path string, reader io.Reader) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Serve(path string, request *http.Request, writer http.ResponseWriter)
	Delete(path string) error
	Copy(src, dst string) error
	GetBucket() *Bucket
}

type Storage struct {
	specifics StorageSpecificAPI
	Bucket    Bucket
}

var (
	cachedStorage []StorageAPI
	// Writes for the same blob path must not interleave
	pathLocks = cmap.New[*sync.Mutex]()
)

func Init() {
	db.Instance.AutoMigrate(&Bucket{})

	var buckets []Bucket
	err := db.Instance.Find(&buckets).Error
	if err != nil {
		panic(err)
	}
	if len(buckets) == 0 && config.DEFAULT_BUCKET_DIR != "" {
		bucket := Bucket{
			Name:        "default",
			StorageType: StorageTypeFile,
			Path:        config.DEFAULT_BUCKET_DIR,
		}
		if err = bucket.Create(); err != nil {
			panic(err)
		}
		buckets = append(buckets, bucket)
	}
	log.Printf("Storage Buckets found: %d\n", len(buckets))
	cachedStorage = nil
	var storage StorageAPI
	for _, bucket := range buckets {
		if bucket.IsS3() {
			storage = NewS3Storage(&bucket)
		} else if bucket.StorageType == StorageTypeFile {
			storage = NewDiskStorage(&bucket)
		} else {
			panic(fmt.Sprintf("Storage type unavailable for Bucket %d", bucket.ID))
		}
		cachedStorage = append(cachedStorage, storage)
	}
}

func (s *Storage) GetBucket() *Bucket {
	return &s.Bucket
}

func GetDefaultStorage() StorageAPI {
	if len(cachedStorage) == 0 {
		panic("no storage available")
	}
	for _, s := range cachedStorage {
		if s.GetBucket().StorageType == StorageTypeFile {
			return s
		}
	}
	return cachedStorage[0]
}

func lockPath(path string) *sync.Mutex {
	pathLocks.SetIfAbsent(path, &sync.Mutex{})
	mutex, _ := pathLocks.Get(path)
	mutex.Lock()
	return mutex
}

//
// NOTE: All the functions below work on a local file
//

func (s *Storage) GetSize(path string) int64 {
	fi, err := os.Stat(s.GetFullPath(path))
	if err != nil {
		return -1
	}
	return fi.Size()
}

func (s *Storage) Save(path string, reader io.Reader) (int64, error) {
	mutex := lockPath(path)
	defer mutex.Unlock()

	fileName := s.GetFullPath(path)
	if err := s.EnsureDirExists(filepath.Dir(fileName)); err != nil {
		return 0, err
	}
	file, err := os.Create(fileName)
	if err != nil {
		return 0, err
	}
	result, err := io.Copy(file, reader)
	file.Close()
	return result, err
}

func (s *Storage) Load(path string, writer io.Writer) (int64, error) {
	fileName := s.GetFullPath(path)
	file, err := os.Open(fileName)
	if err != nil {
		return 0, err
	}
	result, err := io.Copy(writer, file)
	file.Close()
	return result, err
}

func (s *Storage) Serve(path string, request *http.Request, writer http.ResponseWriter) {
	fileName := s.GetFullPath(path)
	http.ServeFile(writer, request, fileName)
}

func (s *Storage) Delete(path string) error {
	mutex := lockPath(path)
	defer func() {
		mutex.Unlock()
		pathLocks.Remove(path)
	}()

	s.specifics.DeleteRemoteFile(path)
	return os.Remove(s.GetFullPath(path))
}

// Copy duplicates a blob inside the same bucket
func (s *Storage) Copy(src, dst string) error {
	if err := s.EnsureLocalFile(src); err != nil {
		return err
	}
	file, err := os.Open(s.GetFullPath(src))
	if err != nil {
		return err
	}
	defer file.Close()
	defer s.ReleaseLocalFile(src)
	if _, err = s.Save(dst, file); err != nil {
		return err
	}
	return s.UpdateRemoteFile(dst, "")
}

//
// Proxy methods
//

func (s *Storage) GetFullPath(path string) string {
	return s.specifics.GetFullPath(path)
}
func (s *Storage) EnsureDirExists(dir string) error {
	return s.specifics.EnsureDirExists(dir)
}
func (s *Storage) EnsureLocalFile(path string) error {
	return s.specifics.EnsureLocalFile(path)
}
func (s *Storage) ReleaseLocalFile(path string) {
	s.specifics.ReleaseLocalFile(path)
}
func (s *Storage) DeleteRemoteFile(path string) {
	s.specifics.DeleteRemoteFile(path)
}
func (s *Storage) UpdateRemoteFile(path, mimeType string) error {
	return s.specifics.UpdateRemoteFile(path, mimeType)
}
