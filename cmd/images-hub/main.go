package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/williamjxj/images-hub/internal/config"
	"github.com/williamjxj/images-hub/internal/hub"
	"github.com/williamjxj/images-hub/internal/server"
	"github.com/williamjxj/images-hub/internal/store"
)

func processError(err error) {
	fmt.Println(err.Error())
	os.Exit(2)
}

func main() {
	confPath := flag.String("conf", "conf/config.json", "path to the config file")
	addUser := flag.String("adduser", "", "create a user (user:password) and exit")
	flag.Parse()

	cfg, err := config.Load(*confPath)
	if err != nil {
		processError(err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		processError(err)
	}
	defer st.Close()

	if *addUser != "" {
		user, pass, ok := strings.Cut(*addUser, ":")
		if !ok || user == "" || pass == "" {
			processError(fmt.Errorf("-adduser expects user:password"))
		}
		if err := st.CreateUser(user, pass, 1); err != nil {
			processError(err)
		}
		log.Println("Created user", user)
		return
	}

	reqCache := store.NewReqCache(st)
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	var apis []hub.Searcher
	if cfg.Unsplash.AccessKey != "" {
		apiUnsplash, err := hub.NewUnsplashApi(cfg.Unsplash.AccessKey, reqCache, timeout)
		if err != nil {
			processError(err)
		}
		apis = append(apis, apiUnsplash)
	}
	if cfg.Pixabay.Key != "" {
		apiPixabay, err := hub.NewPixabayApi(cfg.Pixabay.Key, reqCache, timeout)
		if err != nil {
			processError(err)
		}
		apis = append(apis, apiPixabay)
	}
	if cfg.Pexels.Key != "" {
		apiPexels, err := hub.NewPexelsApi(cfg.Pexels.Key, reqCache, timeout)
		if err != nil {
			processError(err)
		}
		apis = append(apis, apiPexels)
	}
	if len(apis) == 0 {
		processError(fmt.Errorf("no provider API keys configured"))
	}

	var auth server.AuthFunc
	if !cfg.Auth.Disabled {
		auth = server.BasicAuth(st)
	}

	srv := server.New(hub.NewAggregator(apis...), auth, cfg.Debug.PrettyJson)
	log.Println("Starting Server on", cfg.Listen)
	log.Fatal(http.ListenAndServe(cfg.Listen, srv))
}
