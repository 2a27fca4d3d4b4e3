package store

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"time"
)

// ReqCache serves repeated upstream requests from the sqlite store instead of
// re-hitting the provider APIs. Entries are keyed by an md5 of the dumped
// request and expire after the caller's TTL.
type ReqCache struct {
	store *Store
	log   *log.Logger
}

func NewReqCache(store *Store) *ReqCache {
	rc := ReqCache{
		store: store,
		log:   log.New(os.Stderr, "(cache) ", log.LstdFlags),
	}
	go rc.purgeExpired()
	return &rc
}

func (rc *ReqCache) purgeExpired() {
	for {
		rc.store.DeleteBefore(time.Now().Unix())
		time.Sleep(1 * time.Hour)
	}
}

// CachedFetch returns the cached response for req if present, otherwise
// performs the request. Only 200 responses are cached; provider errors must
// stay transient.
func (rc *ReqCache) CachedFetch(req *http.Request, client *http.Client, ttl int64) (*http.Response, error) {
	reqBytes, _ := httputil.DumpRequest(req, true)
	md5Hash := md5.Sum(reqBytes)
	reqHash := hex.EncodeToString(md5Hash[:])
	data, ok := rc.store.GetResponse(reqHash)
	if ok {
		res, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), req)
		if err == nil {
			return res, nil
		}
		rc.log.Println("Problems decoding cached result", err.Error())
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	respBytes, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return nil, err
	}
	rc.log.Println("MISS", req.URL.Host)
	if resp.StatusCode == http.StatusOK {
		rc.store.StoreResponse(reqHash, respBytes, time.Now().Unix()+ttl)
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(respBytes)), req)
}
